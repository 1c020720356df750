package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bookmarkd/internal/services"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key holding the authenticated user id.
const UserIDKey = "user_id"

type TokenVerifier interface {
	Verify(token string, want services.TokenType) (uint, error)
}

// RequireToken admits requests carrying a valid bearer token of type want and
// stores its subject under UserIDKey.
func RequireToken(verifier TokenVerifier, want services.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization Header"})
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be 'Bearer <token>'"})
			return
		}

		userID, err := verifier.Verify(token, want)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, services.ErrWrongTokenType) {
				msg = "Only " + string(want) + " tokens are allowed"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the id stored by RequireToken.
func UserID(c *gin.Context) (uint, bool) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := val.(uint)
	return id, ok
}
