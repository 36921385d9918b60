package middleware

import (
	"strings"
	"time"

	"github.com/cogniboard/cogniboard-api/internal/auth"
	"github.com/cogniboard/cogniboard-api/internal/constants"
	apierrors "github.com/cogniboard/cogniboard-api/internal/errors"
	"github.com/gin-gonic/gin"
)

// RequireAuth validates the bearer credential on the Authorization header.
// Missing, malformed, expired and revoked tokens all produce the same
// authentication failure.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), tokenString)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store identity and token metadata for handlers (logout needs the JWT ID)
		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyTokenID, claims.ID)
		c.Set(constants.ContextKeyTokenExpiry, claims.ExpiresAt.Time)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetTokenID retrieves the JWT ID and expiry of the presented credential.
func GetTokenID(c *gin.Context) (string, time.Time, bool) {
	tokenID, exists := c.Get(constants.ContextKeyTokenID)
	if !exists {
		return "", time.Time{}, false
	}
	id, ok := tokenID.(string)
	if !ok {
		return "", time.Time{}, false
	}

	expiry, exists := c.Get(constants.ContextKeyTokenExpiry)
	if !exists {
		return "", time.Time{}, false
	}
	exp, ok := expiry.(time.Time)
	if !ok {
		return "", time.Time{}, false
	}

	return id, exp, true
}
