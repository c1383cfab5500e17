package middleware

import (
	"time"

	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records HTTP metrics for each request. Routes are labelled
// by their pattern so account numbers do not explode the label set.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start).Seconds())
	}
}
