package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-order-backend/internal/model"
)

// CreateUser creates a user account together with its roll number
// reservation. The reservation is checked and written inside one
// transaction so a duplicate roll number is rejected before any account
// row exists.
func (s *gormStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reserved model.RollNumber
		err := tx.First(&reserved, "roll_number = ?", user.RollNumber).Error
		if err == nil {
			return ErrRollNumberTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check roll number %q: %w", user.RollNumber, err)
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		reservation := model.RollNumber{
			RollNumber: user.RollNumber,
			UserID:     user.ID,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to reserve roll number %q: %w", user.RollNumber, err)
		}
		return nil
	})
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *gormStore) GetUserByRollNumber(ctx context.Context, rollNumber string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "roll_number = ?", rollNumber).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *gormStore) GetUserByMobile(ctx context.Context, mobile string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "mobile = ?", mobile).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *gormStore) RollNumberExists(ctx context.Context, rollNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.RollNumber{}).
		Where("roll_number = ?", rollNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
