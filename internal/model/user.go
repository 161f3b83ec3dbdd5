package model

import "time"

// User represents a registered hostel resident.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	RollNumber   string    `gorm:"uniqueIndex;size:32;not null" json:"rollNumber"`
	Hostel       string    `gorm:"size:64;not null" json:"hostel"`
	RoomNumber   string    `gorm:"size:16" json:"roomNumber"`
	Mobile       string    `gorm:"index;size:16" json:"mobile"`
	Email        string    `gorm:"size:128" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}

// RollNumber reserves a roll number for a user. A row here means the roll
// number is taken; the reservation is written in the same transaction that
// creates the account.
type RollNumber struct {
	RollNumber string    `gorm:"primaryKey;size:32"`
	UserID     string    `gorm:"size:36;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
