package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/api/handlers"
	"github.com/fumiyashop/priceapi/internal/api/middleware"
	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, sessions session.Store, refresher *service.TitleRefresher, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Bulk Price API",
			"endpoints": []string{
				"GET /health",
				"GET /metrics",
				"GET /api/get-products",
				"POST /api/bulk-update-prices",
				"POST /api/update-price",
				"POST /api/webhooks",
				"POST /internal/jobs/refresh-titles",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// App API consumed by the embedded admin UI
	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/get-products", handlers.HandleGetProducts(cfg, sessions, logger))
		apiRoutes.POST("/bulk-update-prices", handlers.HandleBulkUpdatePrices(cfg, sessions, logger))
		apiRoutes.POST("/update-price", handlers.HandleUpdatePrice(cfg, sessions, logger))
		apiRoutes.POST("/webhooks", handlers.HandleShopifyWebhook(cfg, logger))
	}

	// Internal routes (require service key)
	internalRoutes := router.Group("/internal")
	internalRoutes.Use(middleware.ServiceKeyAuth(cfg.ServiceKeyHash, logger))
	{
		internalRoutes.POST("/jobs/refresh-titles", handlers.HandleRefreshTitles(refresher, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
}
