package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuthFunc decides whether the request carries an authenticated session
// and returns the session's username. The session model itself lives
// outside this service.
type AuthFunc func(c *gin.Context) (string, bool)

// SessionAuth gates every request behind the supplied session check and
// stores the username on the context for handlers and logging
func SessionAuth(check AuthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := check(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

// HeaderAuth is the default session check: it trusts the X-User header
// placed by the authenticating reverse proxy and falls back to
// "anonymous" when absent
func HeaderAuth(c *gin.Context) (string, bool) {
	if user := c.GetHeader("X-User"); user != "" {
		return user, true
	}
	return "anonymous", true
}
