package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"line_order/internal/services"
	"line_order/pkg/liff"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Bootstrap runs the session gate for a fresh page load. The webview posts
// the credentials the LIFF SDK issued client-side.
func (h *SessionHandler) Bootstrap(c *gin.Context) {
	var creds liff.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sessionID, state, err := h.sessionService.Bootstrap(creds)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"state":      state,
	})
}

// Login records the manual login transition; the webview performs the
// actual redirect to LINE.
func (h *SessionHandler) Login(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session"})
		return
	}

	record, err := h.sessionService.Login(sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       record.Status,
		"status_level": record.StatusLevel,
		"logged_in":    record.LoggedIn,
	})
}
