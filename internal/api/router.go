package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/orderpulse/ordersbff/internal/api/handlers"
	"github.com/orderpulse/ordersbff/internal/api/middleware"
	"github.com/orderpulse/ordersbff/internal/config"
	"github.com/orderpulse/ordersbff/internal/metrics"
	"github.com/orderpulse/ordersbff/internal/repository"
	"github.com/orderpulse/ordersbff/internal/service"
)

// NewRouter creates and configures the Gin router. events may be nil when
// the audit store is disabled.
func NewRouter(
	cfg *config.Config,
	orders service.OrderService,
	events repository.StockEventRepository,
	reg *metrics.Registry,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware(reg))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(reg.Handler()))

	ordersRoutes := router.Group("/api/orders")
	{
		ordersRoutes.GET("/top-sold", handlers.HandleGetTopSold(orders, logger))
		ordersRoutes.GET("/stock-events", handlers.HandleListStockEvents(events, logger))

		writeRoutes := ordersRoutes.Group("")
		writeRoutes.Use(middleware.AuthMiddleware(cfg.APIKeyHash, logger))
		{
			writeRoutes.PATCH("/update-stock/:merchantProductNo", handlers.HandleUpdateStock(orders, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
