package middleware

import (
	"net/http"

	"github.com/darisadam/gdbank-ledger/internal/pkg/ddos"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DDoSMiddleware counts every request per address and sheds addresses that
// go over the per-minute threshold.
func DDoSMiddleware(protection *ddos.Protection) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := protection.TrackRequest(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Error("Failed to track request", zap.Error(err))
			c.Next()
			return
		}

		if protection.Exceeded(count) {
			metrics.RecordRateLimited("ddos")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
