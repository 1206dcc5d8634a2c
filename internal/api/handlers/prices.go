package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/internal/service"
	"github.com/fumiyashop/priceapi/internal/session"
	"github.com/fumiyashop/priceapi/internal/shopify"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

// BulkUpdateRequest is the POST /api/bulk-update-prices payload.
type BulkUpdateRequest struct {
	Updates []domain.PriceUpdate `json:"updates" binding:"required,min=1,dive"`
}

// SingleUpdateRequest is the POST /api/update-price payload.
type SingleUpdateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	VariantID string `json:"variantId" binding:"required"`
	Price     string `json:"price" binding:"required"`
}

// HandleBulkUpdatePrices handles POST /api/bulk-update-prices. Updates are
// grouped by product and applied with one mutation per product; the response
// reports partial success rather than rolling anything back.
func HandleBulkUpdatePrices(cfg *config.Config, sessions session.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		svc, ok := newPriceService(c, cfg, sessions, logger)
		if !ok {
			return
		}

		result, err := svc.BulkUpdatePrices(c.Request.Context(), req.Updates)
		if err != nil {
			logger.Error("Error updating prices", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update prices"})
			return
		}

		writeBatchResult(c, result)
	}
}

// HandleUpdatePrice handles POST /api/update-price: one variant through the
// same batching path.
func HandleUpdatePrice(cfg *config.Config, sessions session.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SingleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		svc, ok := newPriceService(c, cfg, sessions, logger)
		if !ok {
			return
		}

		result, err := svc.UpdateVariantPrice(c.Request.Context(), domain.PriceUpdate{
			ProductID: req.ProductID,
			VariantID: req.VariantID,
			Price:     req.Price,
		})
		if err != nil {
			logger.Error("Error updating price", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update price"})
			return
		}

		writeBatchResult(c, result)
	}
}

// newPriceService loads the offline session and builds a price service for
// this request. On failure it writes the error response and returns ok=false.
func newPriceService(c *gin.Context, cfg *config.Config, sessions session.Store, logger *zap.Logger) (*service.PriceService, bool) {
	sess, err := sessions.Load(c.Request.Context(), session.OfflineSessionID(cfg.Shopify.ShopDomain))
	if err != nil {
		if _, ok := err.(*errors.ErrSessionMissing); ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "No offline session found for this shop"})
			return nil, false
		}
		logger.Error("Failed to load offline session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}

	client := shopify.NewClient(cfg.Shopify, sess, logger)
	return service.NewPriceService(client, logger), true
}

// writeBatchResult maps a BatchResult to the HTTP contract: 200 on full
// success, 400 with both failure details and partial progress otherwise.
func writeBatchResult(c *gin.Context, result *domain.BatchResult) {
	if !result.AllSucceeded() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Some price updates failed",
			"details":           result.Failures,
			"successfulUpdates": successList(result),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"updates": successList(result),
	})
}

// successList keeps the JSON an array (never null) when nothing succeeded.
func successList(result *domain.BatchResult) []domain.ProductUpdateSuccess {
	if result.SuccessfulUpdates == nil {
		return []domain.ProductUpdateSuccess{}
	}
	return result.SuccessfulUpdates
}
