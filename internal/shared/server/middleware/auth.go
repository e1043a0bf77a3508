package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docextract-backend/internal/shared/auth"
	"docextract-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
)

// Authenticator resolves an Authorization header to a principal.
type Authenticator interface {
	Authenticate(header string) (auth.Principal, error)
}

// Auth validates bearer tokens and stores the principal email in context.
// Requests whose path starts with one of publicPrefixes pass through untouched.
func Auth(authn Authenticator, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if prefix != "" && strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		principal, err := authn.Authenticate(c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingCredential):
				respond.Error(c, http.StatusUnauthorized, "missing_credential", "Authorization token is missing.", nil)
			default:
				respond.Error(c, http.StatusUnauthorized, "invalid_credential", "Invalid or expired token.", nil)
			}
			return
		}

		c.Set(userEmailKey, principal.Email)
		c.Next()
	}
}

// SetUserID records the resolved account id for downstream logging.
func SetUserID(c *gin.Context, id int64) {
	if c == nil {
		return
	}
	c.Set(userIDKey, id)
}

// UserIDFromContext fetches the account id recorded by SetUserID.
func UserIDFromContext(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(int64); ok {
		return id
	}
	return 0
}

// UserEmailFromContext fetches the principal email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}
