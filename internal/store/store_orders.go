package store

import (
	"context"
	"fmt"

	"hostel-order-backend/internal/model"
)

func (s *gormStore) CreateOrder(ctx context.Context, order *model.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *gormStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &order, nil
}

// ListOrdersByHostel returns every order for a hostel in creation order.
// Status filtering is left to the caller; the board only renders Pending.
func (s *gormStore) ListOrdersByHostel(ctx context.Context, hostelID string) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.WithContext(ctx).Where("hostel_id = ?", hostelID).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *gormStore) CreateParticipant(ctx context.Context, participant *model.Participant) error {
	if err := s.db.WithContext(ctx).Create(participant).Error; err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (s *gormStore) ListParticipants(ctx context.Context, orderID string) ([]model.Participant, error) {
	var participants []model.Participant
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}

func (s *gormStore) GetParticipant(ctx context.Context, orderID, participantID string) (*model.Participant, error) {
	var participant model.Participant
	err := s.db.WithContext(ctx).
		First(&participant, "id = ? AND order_id = ?", participantID, orderID).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &participant, nil
}

func (s *gormStore) CreateItem(ctx context.Context, item *model.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (s *gormStore) ListItems(ctx context.Context, participantID string) ([]model.Item, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).Where("participant_id = ?", participantID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *gormStore) CreateMessage(ctx context.Context, message *model.Message) error {
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListMessages returns an order's chat ordered by creation time ascending.
// The ordering lives in the query; callers never re-sort.
func (s *gormStore) ListMessages(ctx context.Context, orderID string) ([]model.Message, error) {
	var messages []model.Message
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
