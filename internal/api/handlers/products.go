package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
	"github.com/fumiyashop/priceapi/internal/shopify"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

// HandleGetProducts handles GET /api/get-products: the first page of
// products with their variants, flattened for the edit UI.
func HandleGetProducts(cfg *config.Config, sessions session.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Load(c.Request.Context(), session.OfflineSessionID(cfg.Shopify.ShopDomain))
		if err != nil {
			if _, ok := err.(*errors.ErrSessionMissing); ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "No offline session found for this shop"})
				return
			}
			logger.Error("Failed to load offline session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		client := shopify.NewClient(cfg.Shopify, sess, logger)
		products, err := service.NewProductService(client, logger).FetchProducts(c.Request.Context())
		if err != nil {
			logger.Error("Error fetching products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, products)
	}
}
