package model

import "time"

// Order status values. Completed is only ever read back, never set by this
// service.
const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
)

// Order represents a group purchase session scoped to a hostel.
type Order struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	ItemCount        int       `gorm:"not null" json:"items"`
	Status           string    `gorm:"size:16;not null;default:Pending" json:"status"`
	TimeLimitMinutes int       `gorm:"not null" json:"timeLimit"`
	HostelID         string    `gorm:"index;size:64;not null" json:"hostelId"`
	CreatedByID      string    `gorm:"size:36" json:"createdById"`
	CreatedByName    string    `gorm:"size:128" json:"createdByName"`
	CreatedAt        time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"not null" json:"-"`

	// Associations
	Participants []Participant `gorm:"foreignKey:OrderID" json:"-"`
	Messages     []Message     `gorm:"foreignKey:OrderID" json:"-"`
}

// Participant represents one person's sub-order within an Order.
type Participant struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID   string    `gorm:"index;size:36;not null" json:"orderId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Room      string    `gorm:"size:16;not null" json:"room"`
	CreatorID string    `gorm:"size:36" json:"creatorId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Associations
	Items []Item `gorm:"foreignKey:ParticipantID" json:"-"`
}

// Item represents a priced, quantified line within a Participant's sub-order.
type Item struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ParticipantID string    `gorm:"index;size:36;not null" json:"participantId"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	Quantity      float64   `gorm:"not null" json:"quantity"`
	Price         float64   `gorm:"not null" json:"price"`
	CreatedAt     time.Time `gorm:"not null" json:"createdAt"`
}
