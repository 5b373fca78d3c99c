// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/cart"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store *redisdb.Client, products *product.Service, cfg *config.Config, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(store, products, cfg, log),
		config:      cfg,
	}
}

// Service exposes the underlying cart service for wiring other handlers
func (h *CartHandler) Service() *cart.Service {
	return h.cartService
}

// RemoveItemRequest identifies a cart line by its canonical identity
type RemoveItemRequest struct {
	ProductID       string            `json:"product_id" binding:"required"`
	SelectedOptions map[string]string `json:"selected_options"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	ownerKey := h.ownerKey(c)

	cartResponse, err := h.cartService.Get(c.Request.Context(), ownerKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	ownerKey := h.ownerKey(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddItem(c.Request.Context(), ownerKey, &req)
	if err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, cart.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateQuantity handles PATCH /cart/items
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	ownerKey := h.ownerKey(c)

	var req cart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.UpdateQuantity(c.Request.Context(), ownerKey, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveFromCart handles DELETE /cart/items
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	ownerKey := h.ownerKey(c)

	var req RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.RemoveItem(c.Request.Context(), ownerKey, cart.LineKey(req.ProductID, req.SelectedOptions))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    cartResponse,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	ownerKey := h.ownerKey(c)

	if err := h.cartService.Clear(c.Request.Context(), ownerKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

func (h *CartHandler) ownerKey(c *gin.Context) string {
	userID, _ := middleware.GetUserIDFromContext(c)
	return cart.OwnerKey(userID, getOrCreateSessionID(c))
}
