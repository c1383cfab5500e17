package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
)

// MaintenanceKey holds "true" while the ledger is closed for maintenance.
const MaintenanceKey = "gdbank:maintenance"

var alwaysOpenPaths = map[string]bool{
	"/":        true,
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// MaintenanceMiddleware rejects API traffic while the maintenance flag is set.
// Requests carrying bypassToken in X-Maintenance-Bypass still go through; an
// empty token disables the bypass.
func MaintenanceMiddleware(redisClient *redis.Client, bypassToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if alwaysOpenPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 100*time.Millisecond)
		defer cancel()

		val, err := redisClient.Get(ctx, MaintenanceKey).Result()
		if err != nil && err != redis.Nil {
			// Fail open
			logger.Error("Failed to check maintenance mode", zap.Error(err))
			c.Next()
			return
		}

		if val == "true" {
			if bypassToken != "" && c.GetHeader("X-Maintenance-Bypass") == bypassToken {
				c.Next()
				return
			}

			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "Ledger is under maintenance. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
