// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	"github.com/blackbox-gh/storefront-backend/internal/domain/product"
	"github.com/blackbox-gh/storefront-backend/internal/domain/repair"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/handlers"
	"github.com/blackbox-gh/storefront-backend/internal/interfaces/http/middleware"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"

	"github.com/blackbox-gh/storefront-backend/internal/pkg/pulse"
)

// SetupRoutes wires every API route group onto the given router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, store *redisdb.Client, cfg *config.Config, log *logrus.Logger) {
	productService := product.NewService(db, cfg)
	pulseClient := pulse.NewClient(cfg, log)
	repairService := repair.NewService(store, pulseClient, cfg, log)

	cartHandler := handlers.NewCartHandler(store, productService, cfg, log)

	setupAuthRoutes(rg, db, cartHandler, repairService, cfg, log)
	setupProductRoutes(rg, db, cfg)
	setupCartRoutes(rg, cartHandler, cfg)
	setupOrderRoutes(rg, db, store, cartHandler, cfg, log)
	setupRepairRoutes(rg, db, repairService, cfg)
	setupWishlistRoutes(rg, store, productService, cfg)
	setupCompareRoutes(rg, store, productService, cfg)
	setupPulseRoutes(rg, pulseClient, cfg)
	setupAdminRoutes(rg, db, store, cartHandler, repairService, cfg, log)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cartHandler *handlers.CartHandler, repairService *repair.Service, cfg *config.Config, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(db, cartHandler.Service(), repairService, cfg, log)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// setupProductRoutes sets up catalog routes
func setupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/:id/related", productHandler.GetRelatedProducts)
	}
}

// setupCartRoutes sets up cart routes; carts work for guests and
// signed-in users alike
func setupCartRoutes(rg *gin.RouterGroup, cartHandler *handlers.CartHandler, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PATCH("/items", cartHandler.UpdateQuantity)
		cart.DELETE("/items", cartHandler.RemoveFromCart)
		cart.DELETE("", cartHandler.ClearCart)
	}
}

// setupOrderRoutes sets up order ledger routes
func setupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, store *redisdb.Client, cartHandler *handlers.CartHandler, cfg *config.Config, log *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, store, cartHandler.Service(), cfg, log)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.Checkout)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
	}
}

// setupRepairRoutes sets up the intake wizard and repair ledger routes.
// The wizard works for guests; submission and history require sign-in.
func setupRepairRoutes(rg *gin.RouterGroup, db *gorm.DB, repairService *repair.Service, cfg *config.Config) {
	repairHandler := handlers.NewRepairHandler(db, repairService, cfg)

	repairs := rg.Group("/repairs")
	repairs.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		intake := repairs.Group("/intake")
		{
			intake.GET("", repairHandler.GetIntake)
			intake.PATCH("", repairHandler.UpdateIntakeForm)
			intake.POST("/advance", repairHandler.AdvanceIntake)
			intake.POST("/back", repairHandler.RetreatIntake)
			intake.POST("/diagnose", repairHandler.Diagnose)
		}

		protected := repairs.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("", repairHandler.SubmitRepair)
			protected.GET("", repairHandler.ListRepairs)
		}
	}
}

// setupWishlistRoutes sets up wishlist routes; the wishlist is only
// available to signed-in users
func setupWishlistRoutes(rg *gin.RouterGroup, store *redisdb.Client, products *product.Service, cfg *config.Config) {
	wishlistHandler := handlers.NewWishlistHandler(store, products, cfg)

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(cfg))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.POST("/:productId", wishlistHandler.ToggleWishlist)
	}
}

// setupCompareRoutes sets up compare set routes
func setupCompareRoutes(rg *gin.RouterGroup, store *redisdb.Client, products *product.Service, cfg *config.Config) {
	compareHandler := handlers.NewCompareHandler(store, products, cfg)

	compare := rg.Group("/compare")
	compare.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		compare.GET("", compareHandler.GetCompare)
		compare.POST("/:productId", compareHandler.AddToCompare)
		compare.DELETE("/:productId", compareHandler.RemoveFromCompare)
	}
}

// setupPulseRoutes sets up the assistant chat proxy
func setupPulseRoutes(rg *gin.RouterGroup, pulseClient *pulse.Client, cfg *config.Config) {
	chatHandler := handlers.NewChatHandler(pulseClient, cfg)

	pulseGroup := rg.Group("/pulse")
	{
		pulseGroup.POST("/chat", chatHandler.Chat)
	}
}

// setupAdminRoutes sets up admin related routes
func setupAdminRoutes(rg *gin.RouterGroup, db *gorm.DB, store *redisdb.Client, cartHandler *handlers.CartHandler, repairService *repair.Service, cfg *config.Config, log *logrus.Logger) {
	orderHandler := handlers.NewOrderHandler(db, store, cartHandler.Service(), cfg, log)
	repairHandler := handlers.NewRepairHandler(db, repairService, cfg)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
		admin.PUT("/repairs/:id/status", repairHandler.UpdateRepairStatus)
	}
}
