package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload carried by every issued credential.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer credentials. Verified tokens
// are additionally checked against the revocation store so that logout takes
// effect before the token's natural expiry.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoker TokenRevoker
}

func NewTokenManager(secret string, ttl time.Duration, revoker TokenRevoker) *TokenManager {
	return &TokenManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
	}
}

// Issue creates a signed token for the user.
func (m *TokenManager) Issue(userID uint64) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token string and checks it has not been revoked.
func (m *TokenManager) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Revoke invalidates a token by its JWT ID until the given expiry.
func (m *TokenManager) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.revoker.Revoke(ctx, tokenID, expiresAt)
}
