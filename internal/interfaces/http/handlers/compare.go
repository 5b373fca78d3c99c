// internal/interfaces/http/handlers/compare.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/compare"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// CompareHandler handles compare set endpoints
type CompareHandler struct {
	compareService *compare.Service
	config         *config.Config
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(store *redisdb.Client, products *product.Service, cfg *config.Config) *CompareHandler {
	return &CompareHandler{
		compareService: compare.NewService(store, products, cfg),
		config:         cfg,
	}
}

// AddToCompare handles POST /compare/:productId
func (h *CompareHandler) AddToCompare(c *gin.Context) {
	set, err := h.compareService.Add(c.Request.Context(), h.ownerKey(c), c.Param("productId"))
	if err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, compare.ErrLimitExceeded):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update compare set"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Added to compare",
		"data":    set,
	})
}

// RemoveFromCompare handles DELETE /compare/:productId
func (h *CompareHandler) RemoveFromCompare(c *gin.Context) {
	set, err := h.compareService.Remove(c.Request.Context(), h.ownerKey(c), c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update compare set"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Removed from compare",
		"data":    set,
	})
}

// GetCompare handles GET /compare
func (h *CompareHandler) GetCompare(c *gin.Context) {
	products, err := h.compareService.List(c.Request.Context(), h.ownerKey(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load compare set"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Compare set retrieved successfully",
		"data": gin.H{
			"products": products,
			"count":    len(products),
		},
	})
}

func (h *CompareHandler) ownerKey(c *gin.Context) string {
	userID, _ := middleware.GetUserIDFromContext(c)
	return compare.OwnerKey(userID, getOrCreateSessionID(c))
}
