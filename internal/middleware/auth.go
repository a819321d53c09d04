package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

// RequireAuth resolves the session written at login and rejects requests
// that carry no authenticated user. The normalized user ID lands in the
// request context so handlers and the organization middleware never touch
// the session themselves.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// sessionUserID reads the logged-in user from the session cookie. Session
// stores round-trip integers through gob, so every width a store may hand
// back is accepted and normalized here.
func sessionUserID(c *gin.Context) (uint64, bool) {
	switch v := sessions.Default(c).Get(constants.ContextKeyUserID).(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
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

// GetUserID returns the user ID placed in the context by RequireAuth.
func GetUserID(c *gin.Context) (uint64, bool) {
	raw, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint64)
	return userID, ok
}
