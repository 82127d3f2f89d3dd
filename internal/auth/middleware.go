package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hail/internal/domain"
)

const identityKey = "auth.identity"

// Middleware verifies the caller's credentials and stores the identity on
// the request context. Websocket attach also accepts the token as a query
// parameter, since browsers cannot set headers on upgrade requests.
func Middleware(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("token")
		}

		id, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthorized.Error()})
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole rejects callers whose role does not match.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok || id.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "wrong role for this operation"})
			return
		}
		c.Next()
	}
}

// FromContext returns the verified identity set by Middleware.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
