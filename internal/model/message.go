package model

import "time"

// Message represents a chat message within an Order's group chat.
// SenderName is denormalized at send time so messages stay displayable even
// when the sender's profile can no longer be resolved.
type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID    string    `gorm:"index;size:36;not null" json:"orderId"`
	Text       string    `gorm:"not null" json:"text"`
	SenderID   string    `gorm:"size:36" json:"senderId"`
	SenderName string    `gorm:"size:128" json:"senderName"`
	CreatedAt  time.Time `gorm:"index;not null" json:"createdAt"`
}
