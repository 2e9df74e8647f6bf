package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:access:"

// Revocations is a Redis-backed deny list of access token IDs. Entries
// expire together with the token they revoke. A nil *Revocations, or one
// built with a nil client, accepts every token and revokes nothing.
type Revocations struct {
	client *redis.Client
}

func NewRevocations(c *redis.Client) *Revocations {
	return &Revocations{client: c}
}

// Enabled reports whether revocations are backed by Redis.
func (r *Revocations) Enabled() bool { return r != nil && r.client != nil }

// Revoke denies the token with the given ID for ttl. A non-positive ttl
// means the token has already expired and nothing is stored.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if !r.Enabled() || ttl <= 0 {
		return nil
	}
	if tokenID == "" {
		return errors.New("token has no id")
	}
	return r.client.Set(ctx, revokedPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked returns true when the token ID is on the deny list.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !r.Enabled() || tokenID == "" {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (r *Revocations) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	return r.client.Ping(ctx).Err()
}
