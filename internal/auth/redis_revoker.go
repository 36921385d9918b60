package auth

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

const revokedKeyPrefix = "revoked_token:"

// RedisRevoker is a TokenRevoker backed by Redis. Revoked token IDs are stored
// with a TTL matching the token's remaining lifetime, so the set cleans itself up.
type RedisRevoker struct {
	client rueidis.Client
}

func NewRedisRevoker(client rueidis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	cmd := r.client.B().Set().
		Key(revokedKeyPrefix + tokenID).
		Value("1").
		Ex(ttl).
		Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(revokedKeyPrefix + tokenID).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
