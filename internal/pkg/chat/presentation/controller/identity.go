package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// identityHeader carries the identity already verified by the upstream
// identity provider. This core trusts it without re-verification.
const identityHeader = "X-User-ID"

const identityKey = "identity"

// RequireIdentity rejects requests that arrive without a verified identity.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(identityHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
			return
		}
		c.Set(identityKey, userID)
		c.Next()
	}
}

// CurrentUser returns the verified identity set by RequireIdentity.
func CurrentUser(c *gin.Context) string {
	return c.GetString(identityKey)
}
