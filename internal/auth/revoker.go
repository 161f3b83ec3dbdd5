package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker keeps a Redis-backed list of revoked session token IDs. Entries
// expire with the token they belong to, so the set stays bounded.
type Revoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRevoker creates a revoker on the given Redis client.
func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{
		client:    client,
		keyPrefix: "hostelorder:auth:revoked:",
	}
}

// Revoke marks a token ID as revoked for the remainder of its lifetime.
func (r *Revoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	if ttl <= 0 {
		// Token already expired; nothing to remember.
		return nil
	}
	return r.client.Set(ctx, r.keyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked.
func (r *Revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, r.keyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
