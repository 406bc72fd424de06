package middleware

import (
	"net/http"
	"strings"

	"github.com/subzcrib/billing-platform/internal/auth"
	"github.com/subzcrib/billing-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key the verified identity is stored
// under
const IdentityKey = "identity"

// AuthMiddleware verifies the bearer token and stores the caller
// identity in the request context. Any verification failure aborts
// with 401; the handler chain never runs without an identity.
func AuthMiddleware(issuer auth.TokenIssuer, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		identity, err := issuer.Verify(token)
		if err != nil {
			log.Warn("Rejected token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		c.Set(IdentityKey, &identity)
		c.Next()
	}
}

// CallerIdentity extracts the identity stored by AuthMiddleware. The
// second return is false on routes that skipped the middleware.
func CallerIdentity(c *gin.Context) (*auth.Identity, bool) {
	value, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*auth.Identity)
	return identity, ok
}
