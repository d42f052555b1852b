// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/notification"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/settings"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

// Deps carries the shared services the route tree needs
type Deps struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Config      *config.Config
	Orders      *order.Service
	Payments    *payment.Service
	Inventory   *inventory.Service
	Settings    *settings.Service
	Notifier    *notification.Dispatcher
	PDF         *pdf.Service
}

// SetupRoutes wires every route group onto the API router
func SetupRoutes(rg *gin.RouterGroup, deps *Deps) {
	setupAuthRoutes(rg, deps)
	setupProductRoutes(rg, deps)
	setupCartRoutes(rg, deps)
	setupOrderRoutes(rg, deps)
	setupCouponRoutes(rg, deps)
	setupNotificationRoutes(rg, deps)
	setupWebhookRoutes(rg, deps)
	setupAdminRoutes(rg, deps)
}

func setupAuthRoutes(rg *gin.RouterGroup, deps *Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Config))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
		}
	}
}

func setupProductRoutes(rg *gin.RouterGroup, deps *Deps) {
	productHandler := handlers.NewProductHandler(deps.DB, deps.Config)

	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
	}

	rg.GET("/categories", productHandler.ListCategories)
}

func setupCartRoutes(rg *gin.RouterGroup, deps *Deps) {
	cartHandler := handlers.NewCartHandler(deps.DB, deps.Redis, deps.Config)

	carts := rg.Group("/cart")
	carts.Use(middleware.OptionalAuthMiddleware(deps.Config))
	{
		carts.GET("", cartHandler.GetCart)
		carts.POST("/items", cartHandler.AddItem)
		carts.PUT("/items/:variant_id", cartHandler.UpdateItem)
		carts.DELETE("/items/:variant_id", cartHandler.RemoveItem)
		carts.DELETE("", cartHandler.ClearCart)
		carts.POST("/merge", cartHandler.MergeCart)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, deps *Deps) {
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	invoiceHandler := handlers.NewInvoiceHandler(deps.Orders, deps.PDF)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.Config))
	{
		orders.POST("", orderHandler.Checkout)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/code/:code", orderHandler.GetOrderByCode)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", invoiceHandler.Download)
	}
}

func setupCouponRoutes(rg *gin.RouterGroup, deps *Deps) {
	couponHandler := handlers.NewCouponHandler(deps.DB, deps.Config)

	rg.POST("/coupons/validate", couponHandler.Validate)
}

func setupNotificationRoutes(rg *gin.RouterGroup, deps *Deps) {
	notificationHandler := handlers.NewNotificationHandler(deps.Notifier)

	notifications := rg.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(deps.Config))
	{
		notifications.GET("", notificationHandler.List)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
	}
}

func setupWebhookRoutes(rg *gin.RouterGroup, deps *Deps) {
	webhookHandler := handlers.NewWebhookHandler(deps.Payments)

	// No auth: the provider identifies transactions by content. A
	// shared-secret header check would go here once the provider
	// supports one.
	rg.POST("/webhooks/bank-transfer", webhookHandler.BankTransfer)
}

func setupAdminRoutes(rg *gin.RouterGroup, deps *Deps) {
	productHandler := handlers.NewProductHandler(deps.DB, deps.Config)
	couponHandler := handlers.NewCouponHandler(deps.DB, deps.Config)
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	inventoryHandler := handlers.NewInventoryHandler(deps.Inventory)
	settingsHandler := handlers.NewSettingsHandler(deps.Settings)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Config))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.POST("/categories", productHandler.CreateCategory)

		admin.GET("/coupons", couponHandler.ListCoupons)
		admin.POST("/coupons", couponHandler.CreateCoupon)
		admin.PUT("/coupons/:id", couponHandler.UpdateCoupon)
		admin.DELETE("/coupons/:id", couponHandler.DeleteCoupon)

		admin.GET("/orders", orderHandler.ListOrders)
		admin.GET("/orders/:id", orderHandler.GetOrder)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)

		admin.POST("/inventory/adjustments", inventoryHandler.Adjust)
		admin.GET("/inventory/movements/:variant_id", inventoryHandler.GetMovements)
		admin.GET("/inventory/low-stock", inventoryHandler.LowStock)

		admin.GET("/settings", settingsHandler.List)
		admin.PUT("/settings", settingsHandler.Set)
	}
}
