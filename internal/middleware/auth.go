package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/auth"
	"github.com/LeticiaAmen/challenge-seguimiento-viajes/internal/domain"
)

// sessionKey is the gin context key the authenticated session is stored
// under. Access goes through Session(c) only; handlers never touch an
// untyped bag.
const sessionKey = "authenticatedSession"

// Authenticator produces an authenticated session from a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Session, error)
}

// AuthMiddleware authenticates the bearer token on every request and
// stores the resulting session in the request context.
func AuthMiddleware(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		session, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrKeyFetch) {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Session returns the authenticated session stored by AuthMiddleware.
func Session(c *gin.Context) *domain.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := value.(*domain.Session)
	return session
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
