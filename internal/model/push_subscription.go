package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription is tied to one hostel; its owner is notified whenever a
// new group order opens there.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	HostelID  string    `gorm:"index;size:64;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
