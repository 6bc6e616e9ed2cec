package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/responses"
)

const (
	userIDKey = "userId"
	tokenKey  = "token"
)

// TokenResolver maps a bearer token to a user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's id on the context.
func Authenticate(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			responses.Error(c, apperrors.Unauthorized("missing Authorization header"))
			return
		}

		// Expected format: "Bearer <token>"
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			responses.Error(c, apperrors.Unauthorized("invalid Authorization format"))
			return
		}
		token = strings.TrimSpace(token)

		userID, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			responses.Error(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// UserID returns the id stored by Authenticate.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Token returns the raw bearer token stored by Authenticate.
func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}
