package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hostel-order-backend/internal/model"
	"hostel-order-backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid roll number or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

// Signup holds the fields collected on the signup form. All of them are
// required.
type Signup struct {
	Name       string
	RollNumber string
	Hostel     string
	RoomNumber string
	Mobile     string
	Password   string
}

// PasswordAuthenticator implements roll-number/password authentication
// using bcrypt. Accounts carry a synthetic email derived from the roll
// number and a fixed domain.
type PasswordAuthenticator struct {
	store       store.Store
	emailDomain string
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(s store.Store, emailDomain string) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: s, emailDomain: emailDomain}
}

// Register creates a new account. The roll number reservation happens in
// the same store transaction as the account row, so a taken roll number
// never leaves a half-created account behind.
func (a *PasswordAuthenticator) Register(ctx context.Context, signup Signup) (*model.User, error) {
	if len(signup.Password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         signup.Name,
		RollNumber:   signup.RollNumber,
		Hostel:       signup.Hostel,
		RoomNumber:   signup.RoomNumber,
		Mobile:       signup.Mobile,
		Email:        signup.RollNumber + a.emailDomain,
		PasswordHash: string(hash),
	}

	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies a roll number and password, returning the user if
// valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, rollNumber, password string) (*model.User, error) {
	user, err := a.store.GetUserByRollNumber(ctx, rollNumber)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// NormalizeMobile strips the configured country-code prefix from a
// provider-formatted phone number, matching how mobiles are stored.
func NormalizeMobile(mobile, countryCode string) string {
	return strings.TrimPrefix(strings.TrimSpace(mobile), countryCode)
}
