package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/logger"
	"github.com/highroller/payroll-api/pkg/response"
)

// Gin context keys set by Session.
const (
	ContextIdentityKey  = "identity"
	ContextSessionIDKey = "sessionID"
)

type sessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// Session protects routes by requiring a live session. The token is read from the session
// cookie first and then from an Authorization Bearer header.
func Session(auth sessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, session.Identity())
		c.Set(ContextSessionIDKey, session.ID)
		c.Set(logger.UserKey, session.Username)
		c.Next()
	}
}

// TokenFromRequest extracts the session token from the cookie or the Authorization header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if value, err := c.Cookie(cookieName); err == nil && value != "" {
			return value
		}
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IdentityFromContext returns the caller set by Session.
func IdentityFromContext(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}

// SessionIDFromContext returns the id of the session set by Session.
func SessionIDFromContext(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}
