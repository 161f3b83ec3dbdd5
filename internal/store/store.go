package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hostel-order-backend/internal/model"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRollNumberTaken is returned when a signup reuses a reserved roll number.
	ErrRollNumberTaken = errors.New("roll number already registered")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Users and roll number reservations.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByRollNumber(ctx context.Context, rollNumber string) (*model.User, error)
	GetUserByMobile(ctx context.Context, mobile string) (*model.User, error)
	RollNumberExists(ctx context.Context, rollNumber string) (bool, error)

	// Orders, participants, items.
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrdersByHostel(ctx context.Context, hostelID string) ([]model.Order, error)
	CreateParticipant(ctx context.Context, participant *model.Participant) error
	ListParticipants(ctx context.Context, orderID string) ([]model.Participant, error)
	GetParticipant(ctx context.Context, orderID, participantID string) (*model.Participant, error)
	CreateItem(ctx context.Context, item *model.Item) error
	ListItems(ctx context.Context, participantID string) ([]model.Item, error)

	// Chat.
	CreateMessage(ctx context.Context, message *model.Message) error
	ListMessages(ctx context.Context, orderID string) ([]model.Message, error)

	// Push subscriptions.
	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeletePushSubscription(ctx context.Context, endpoint string) error
	GetPushSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListPushSubscriptionsByHostel(ctx context.Context, hostelID string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying gorm handle for middleware and tests.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
