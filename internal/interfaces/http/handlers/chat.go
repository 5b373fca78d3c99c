// internal/interfaces/http/handlers/chat.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/pkg/pulse"
)

// ChatHandler proxies the Pulse assistant conversation
type ChatHandler struct {
	pulseClient *pulse.Client
	config      *config.Config
}

// NewChatHandler creates a new chat handler
func NewChatHandler(pulseClient *pulse.Client, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		pulseClient: pulseClient,
		config:      cfg,
	}
}

// ChatRequest carries the prompt plus the prior turns, which the client
// replays on every call
type ChatRequest struct {
	History []pulse.Message `json:"history"`
	Prompt  string          `json:"prompt" binding:"required"`
}

// Chat handles POST /pulse/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	reply := h.pulseClient.Converse(c.Request.Context(), req.History, req.Prompt)

	c.JSON(http.StatusOK, gin.H{
		"message": "Pulse replied",
		"data": gin.H{
			"reply": reply,
		},
	})
}
