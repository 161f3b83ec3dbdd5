package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"hostel-order-backend/config"
)

var (
	ErrOTPSendRateLimited   = errors.New("too many verification code requests")
	ErrOTPChallengeInvalid  = errors.New("verification request is invalid")
	ErrOTPCodeInvalid       = errors.New("incorrect verification code")
	ErrOTPCodeExpired       = errors.New("verification code expired")
	ErrOTPTooManyAttempts   = errors.New("too many verification attempts")
	ErrOTPMobileRequired    = errors.New("mobile number is required")
	ErrOTPCodeRequired      = errors.New("verification code is required")
	ErrOTPChallengeRequired = errors.New("verification session is required")
)

// Sender delivers a one-time code to a mobile number. The SMS gateway
// itself is deployment-specific; the default sender only logs.
type Sender interface {
	Send(ctx context.Context, mobile, code string) error
}

// OTPStore issues and verifies phone verification challenges. Challenges
// live in Redis with a TTL; codes are bcrypt-hashed and resends are
// rate-limited per mobile number. This replaces the ambient
// verifier/confirmation globals of the old flow with an explicit challenge
// keyed by ID.
type OTPStore struct {
	client            *redis.Client
	sender            Sender
	keyPrefix         string
	codeTTL           time.Duration
	challengePersist  time.Duration
	resendAfter       time.Duration
	maxVerifyAttempts int
}

type otpChallenge struct {
	ID          string    `json:"id"`
	Mobile      string    `json:"mobile"`
	CodeHash    string    `json:"codeHash"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"maxAttempts"`
}

// NewOTPStore creates an OTP store on the given Redis client.
func NewOTPStore(client *redis.Client, cfg config.OTPConfig, sender Sender) *OTPStore {
	return &OTPStore{
		client:            client,
		sender:            sender,
		keyPrefix:         "hostelorder:auth:otp",
		codeTTL:           cfg.CodeTTL,
		challengePersist:  cfg.CodeTTL + time.Minute,
		resendAfter:       cfg.ResendAfter,
		maxVerifyAttempts: cfg.MaxVerifyAttempts,
	}
}

// Send creates a challenge for the mobile number, delivers the code and
// returns the challenge ID the client must echo back on verification.
func (s *OTPStore) Send(ctx context.Context, mobile string) (string, error) {
	if mobile == "" {
		return "", ErrOTPMobileRequired
	}

	resendKey := s.resendKey(mobile)
	allowed, err := s.client.SetNX(ctx, resendKey, "1", s.resendAfter).Result()
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrOTPSendRateLimited
	}

	code, err := generateNumericCode(6)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	codeHash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", fmt.Errorf("hash otp code: %w", err)
	}

	challenge := otpChallenge{
		ID:          uuid.NewString(),
		Mobile:      mobile,
		CodeHash:    string(codeHash),
		ExpiresAt:   time.Now().UTC().Add(s.codeTTL),
		MaxAttempts: s.maxVerifyAttempts,
	}
	raw, err := json.Marshal(challenge)
	if err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", fmt.Errorf("marshal otp challenge: %w", err)
	}
	if err := s.client.Set(ctx, s.challengeKey(challenge.ID), raw, s.challengePersist).Err(); err != nil {
		_ = s.client.Del(ctx, resendKey).Err()
		return "", err
	}

	if err := s.sender.Send(ctx, mobile, code); err != nil {
		_ = s.client.Del(ctx, s.challengeKey(challenge.ID)).Err()
		return "", fmt.Errorf("send otp code: %w", err)
	}
	return challenge.ID, nil
}

// Verify checks a code against a challenge. On success the challenge is
// consumed and the verified mobile number is returned.
func (s *OTPStore) Verify(ctx context.Context, challengeID, code string) (string, error) {
	if challengeID == "" {
		return "", ErrOTPChallengeRequired
	}
	if code == "" {
		return "", ErrOTPCodeRequired
	}

	key := s.challengeKey(challengeID)
	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPChallengeInvalid
	}
	if err != nil {
		return "", err
	}

	var challenge otpChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return "", ErrOTPChallengeInvalid
	}
	if time.Now().UTC().After(challenge.ExpiresAt) {
		_ = s.client.Del(ctx, key).Err()
		return "", ErrOTPCodeExpired
	}
	if challenge.Attempts >= challenge.MaxAttempts {
		_ = s.client.Del(ctx, key).Err()
		return "", ErrOTPTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) != nil {
		challenge.Attempts++
		if updated, err := json.Marshal(challenge); err == nil {
			_ = s.client.Set(ctx, key, updated, redis.KeepTTL).Err()
		}
		return "", ErrOTPCodeInvalid
	}

	_ = s.client.Del(ctx, key).Err()
	return challenge.Mobile, nil
}

func (s *OTPStore) challengeKey(id string) string {
	return s.keyPrefix + ":challenge:" + id
}

func (s *OTPStore) resendKey(mobile string) string {
	return s.keyPrefix + ":resend:" + mobile
}

func generateNumericCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
