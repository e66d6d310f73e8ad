package middleware

import (
	"net/http"
	"strings"

	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	CurrentUserIDKey = "user_id"
	UsernameKey      = "username"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// token's user id and username on the context.
func AuthRequired(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing or malformed Authorization header")
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(CurrentUserIDKey, userID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by AuthRequired.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CurrentUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
