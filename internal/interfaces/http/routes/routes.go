// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/inventory-ledger/internal/config"
	"github.com/your-org/inventory-ledger/internal/infrastructure/database/redis"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/handlers"
	"github.com/your-org/inventory-ledger/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupLocationRoutes sets up storage location routes
func SetupLocationRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	locationHandler := handlers.NewLocationHandler(db, cfg)

	locations := rg.Group("/locations")
	locations.Use(middleware.AuthMiddleware(cfg))
	{
		locations.GET("", locationHandler.GetLocations)
		locations.GET("/:id", locationHandler.GetLocation)
	}

	admin := rg.Group("/admin/locations")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("", locationHandler.CreateLocation)
		admin.PUT("/:id", locationHandler.UpdateLocation)
		admin.DELETE("/:id", locationHandler.DeactivateLocation)
	}
}

// SetupStockRoutes sets up stock level, movement, and batch routes
func SetupStockRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	stockHandler := handlers.NewStockHandler(db, cfg)
	batchHandler := handlers.NewBatchHandler(db, cfg)

	stock := rg.Group("/stock")
	stock.Use(middleware.AuthMiddleware(cfg))
	{
		// Movement ledger
		stock.POST("/movements", stockHandler.RecordMovement)
		stock.GET("/products/:productId/movements", stockHandler.ListMovements)

		// Stock levels
		stock.GET("/levels/:productId/:locationId", stockHandler.GetStockLevel)
		stock.GET("/products/:productId/total", stockHandler.GetTotalStock)
		stock.GET("/locations/:locationId/levels", stockHandler.ListStockLevels)

		// Batches
		stock.POST("/batches", batchHandler.CreateBatch)
		stock.GET("/batches", batchHandler.ListBatches)
		stock.GET("/batches/:id", batchHandler.GetBatch)
	}

	admin := rg.Group("/admin/stock")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/batches/expiry-sweep", batchHandler.ReclassifyExpiredBatches)
	}
}

// SetupPurchasingRoutes sets up supplier, purchase order, and reorder routes
func SetupPurchasingRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewPurchaseOrderHandler(db, cfg, redisClient)
	reorderHandler := handlers.NewReorderHandler(db, cfg, redisClient)

	suppliers := rg.Group("/suppliers")
	suppliers.Use(middleware.AuthMiddleware(cfg))
	{
		suppliers.GET("", orderHandler.GetSuppliers)
		suppliers.GET("/:id", orderHandler.GetSupplier)
	}

	orders := rg.Group("/purchase-orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.CreatePurchaseOrder)
		orders.GET("", orderHandler.GetPurchaseOrders)
		orders.GET("/:id", orderHandler.GetPurchaseOrder)
		orders.POST("/:id/lines", orderHandler.AddLine)
		orders.PUT("/:id/submit", orderHandler.SubmitOrder)
		orders.PUT("/:id/confirm", orderHandler.ConfirmOrder)
		orders.PUT("/:id/ship", orderHandler.MarkOrderShipped)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.POST("/:id/lines/:lineId/receive", orderHandler.ReceiveLine)
	}

	reorder := rg.Group("/reorder-suggestions")
	reorder.Use(middleware.AuthMiddleware(cfg))
	{
		reorder.GET("", reorderHandler.GetReorderSuggestions)
	}

	rules := rg.Group("/reorder-rules")
	rules.Use(middleware.AuthMiddleware(cfg))
	{
		rules.GET("", reorderHandler.GetReorderRules)
	}

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.POST("/suppliers", orderHandler.CreateSupplier)
		admin.POST("/reorder-rules", reorderHandler.CreateReorderRule)
	}
}

// SetupStockCountRoutes sets up physical stock count routes
func SetupStockCountRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	countHandler := handlers.NewStockCountHandler(db, cfg)

	counts := rg.Group("/stock-counts")
	counts.Use(middleware.AuthMiddleware(cfg))
	{
		counts.POST("", countHandler.StartCount)
		counts.GET("", countHandler.GetCounts)
		counts.GET("/:id", countHandler.GetCount)
		counts.PUT("/:id/lines/:lineId", countHandler.EnterCount)
		counts.PUT("/:id/submit", countHandler.SubmitCount)
		counts.PUT("/:id/cancel", countHandler.CancelCount)
	}

	// Approving and posting adjust the ledger, admin only
	admin := rg.Group("/stock-counts")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.PUT("/:id/approve", countHandler.ApproveCount)
		admin.POST("/:id/post", countHandler.PostAdjustments)
	}
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupLocationRoutes(rg, db, redisClient, cfg)
	SetupStockRoutes(rg, db, redisClient, cfg)
	SetupPurchasingRoutes(rg, db, redisClient, cfg)
	SetupStockCountRoutes(rg, db, redisClient, cfg)
}
