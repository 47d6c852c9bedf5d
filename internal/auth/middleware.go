package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the owner session ID.
const SessionCookieName = "session_id"

// RequireSession returns a middleware that checks for a valid session cookie.
// If missing or invalid, responds with 401.
func RequireSession(sessions *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		ok, err := sessions.Exists(c.Request.Context(), sessionID)
		if err != nil {
			log.Printf("session lookup: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Next()
	}
}
