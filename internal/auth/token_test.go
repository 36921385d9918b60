package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, NewMemoryRevoker())

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	claims, err := tokens.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.NotEmpty(t, claims.ID)
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, NewMemoryRevoker())
	other := NewTokenManager("other-secret", time.Hour, NewMemoryRevoker())

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	_, err = other.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tokens := NewTokenManager("test-secret", -time.Minute, NewMemoryRevoker())

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	_, err = tokens.Verify(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Revoke(t *testing.T) {
	tokens := NewTokenManager("test-secret", time.Hour, NewMemoryRevoker())
	ctx := context.Background()

	token, err := tokens.Issue(42)
	require.NoError(t, err)

	claims, err := tokens.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))

	_, err = tokens.Verify(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMemoryRevoker_ExpiredEntriesAreDropped(t *testing.T) {
	revoker := NewMemoryRevoker()
	ctx := context.Background()

	require.NoError(t, revoker.Revoke(ctx, "stale", time.Now().Add(-time.Minute)))

	revoked, err := revoker.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	require.False(t, revoked, "a revocation past the token's natural expiry is moot")
}
