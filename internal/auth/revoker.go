package auth

import (
	"context"
	"sync"
	"time"
)

// TokenRevoker tracks revoked token IDs until their natural expiry.
type TokenRevoker interface {
	// Revoke marks a token ID as revoked until expiresAt.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether a token ID has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker is an in-process TokenRevoker. Suitable for single-instance
// deployments and tests; multi-instance deployments use the Redis store.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{
		revoked: make(map[string]time.Time),
	}
}

func (r *MemoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
