package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the middleware stores the verified user id.
const ContextUserKey = "auth.userID"

// RequireSession verifies the Bearer token and stores the user id in the
// gin context. Requests without a valid token get a 401 and never reach
// the handler.
func RequireSession(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(ContextUserKey, userID)
		c.Next()
	}
}

// UserID returns the verified user id stored by RequireSession.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserKey)
}
