package handler

import (
	"net/http"

	"finteach/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Healthz pings the database.
func Healthz(ping func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ping(); err != nil {
			logger.GetGinLogger(c).Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
