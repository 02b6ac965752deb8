package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.LoyaltyHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/customers/:id", handler.GetCustomer)
		api.GET("/customers/:id/recommendations", handler.Recommendations)
		api.POST("/customers/:id/redeem", handler.Redeem)
		api.POST("/transactions", handler.CreateTransaction)
		api.POST("/bulk-transactions", handler.CreateBulkTransactions)
		api.POST("/simulate/bulk-orders", handler.SimulateBulkOrders)
		api.POST("/menu/search", handler.MenuSearch)
		api.GET("/analytics/stores", handler.StoreAnalytics)
		api.GET("/analytics/inventory", handler.InventoryAnalytics)
		api.POST("/admin/documents/:kind/bulk", handler.BulkLoadDocuments)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
