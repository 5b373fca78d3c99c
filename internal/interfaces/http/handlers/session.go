// internal/interfaces/http/handlers/session.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// getOrCreateSessionID resolves the guest session identity. Clients may
// pin it with the X-Session-ID header; otherwise a cookie is used and
// created on first contact.
func getOrCreateSessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}

	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Set session cookie (24 hours)
		c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
	}

	return sessionID
}
