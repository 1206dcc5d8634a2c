package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/service"
)

// HandleRefreshTitles handles POST /internal/jobs/refresh-titles: a manual,
// service-key-guarded trigger for the title refresh pass.
func HandleRefreshTitles(refresher *service.TitleRefresher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := refresher.RunOnce(c.Request.Context()); err != nil {
			logger.Error("Manual title refresh failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "title refresh failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
