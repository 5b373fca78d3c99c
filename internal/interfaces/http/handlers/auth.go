// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/cart"
	"github.com/blackbox-gh/storefront-backend/internal/domain/repair"
	"github.com/blackbox-gh/storefront-backend/internal/domain/user"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userService   *user.Service
	cartService   *cart.Service
	repairService *repair.Service
	config        *config.Config
	log           *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, cartService *cart.Service, repairService *repair.Service, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService:   user.NewService(db, cfg),
		cartService:   cartService,
		repairService: repairService,
		config:        cfg,
		log:           log,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.absorbGuestCart(c, resp.User.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"data":    resp,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.userService.Login(&req)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	h.absorbGuestCart(c, resp.User.ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"data":    resp,
	})
}

// RefreshToken handles POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.userService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session refreshed successfully",
		"data":    resp,
	})
}

// GetProfile handles GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	account, err := h.userService.Profile(userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    account,
	})
}

// absorbGuestCart folds the guest session's cart and intake session into
// the account after a successful sign-in or registration, so a wizard
// interrupted by the submit auth gate survives the trip through login.
func (h *AuthHandler) absorbGuestCart(c *gin.Context, userID string) {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = c.GetHeader("X-Session-ID")
	}
	if sessionID == "" {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())

	if err := h.cartService.MergeGuestCart(ctx, userID, sessionID); err != nil {
		h.log.WithError(err).Warn("Failed to merge guest cart after sign-in")
	}

	if err := h.repairService.AdoptGuestSession(ctx, userID, sessionID); err != nil {
		h.log.WithError(err).Warn("Failed to adopt guest intake session after sign-in")
	}
}
