// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/blackbox-gh/storefront-backend/internal/domain/wishlist"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlistService *wishlist.Service
	config          *config.Config
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(store *redisdb.Client, products *product.Service, cfg *config.Config) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlist.NewService(store, products, cfg),
		config:          cfg,
	}
}

// ToggleWishlist handles POST /wishlist/:productId
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	result, err := h.wishlistService.Toggle(c.Request.Context(), userID, c.Param("productId"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	message := "Removed from wishlist"
	if result.Added {
		message = "Added to wishlist"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    result,
	})
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	products, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist retrieved successfully",
		"data": gin.H{
			"products": products,
			"count":    len(products),
		},
	})
}
