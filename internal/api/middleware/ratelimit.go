package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/darisadam/gdbank-ledger/internal/pkg/metrics"
	"github.com/darisadam/gdbank-ledger/internal/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pinGatedPaths are the routes that check an account PIN.
var pinGatedPaths = map[string]bool{
	"/api/v1/accounts/:number/balance": true,
	"/api/v1/accounts/:number/close":   true,
	"/api/v1/transactions/deposit":     true,
	"/api/v1/transactions/withdraw":    true,
	"/api/v1/transactions/transfer":    true,
}

// RateLimitMiddleware applies rate limiting based on client IP and route
func RateLimitMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		path := c.FullPath()
		config := getRateLimitConfig(path)

		blocked, err := limiter.IsBlocked(ctx, clientIP)
		if err != nil {
			logger.Error("Failed to check block status", zap.Error(err))
		}
		if blocked {
			metrics.RecordRateLimited("blocked")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Too many failed PIN attempts. Your IP has been temporarily blocked.",
				"retry_after": "1 hour",
			})
			c.Abort()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", clientIP, path)
		info, err := limiter.CheckLimitWithInfo(ctx, key, config)
		if err != nil {
			// Fail open
			logger.Error("Rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

		if !info.Allowed {
			retryAfter := int(info.RetryAfter.Seconds())
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			logger.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", path),
				zap.Int("limit", info.Limit),
			)
			metrics.RecordRateLimited("limit")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Rate limit exceeded",
				"limit":       info.Limit,
				"retry_after": fmt.Sprintf("%d seconds", retryAfter),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AccountRateLimitMiddleware limits requests per account number, whatever
// address they come from. Routes without a :number parameter pass through.
func AccountRateLimitMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		number := c.Param("number")
		if number == "" {
			c.Next()
			return
		}

		path := c.FullPath()
		key := fmt.Sprintf("ratelimit:account:%s:%s", number, path)
		info, err := limiter.CheckLimitWithInfo(c.Request.Context(), key, getRateLimitConfig(path))
		if err != nil {
			logger.Error("Account rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Account-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Account-Remaining", fmt.Sprintf("%d", info.Remaining))

		if !info.Allowed {
			logger.Warn("Account rate limit exceeded",
				zap.String("account_number", number),
				zap.String("path", path),
			)
			metrics.RecordRateLimited("account")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Account rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getRateLimitConfig returns appropriate rate limit based on route
func getRateLimitConfig(path string) ratelimit.RateLimitConfig {
	switch path {
	case "/api/v1/transactions/transfer", "/api/v1/transactions/deposit", "/api/v1/transactions/withdraw":
		return ratelimit.TransactionRateLimit
	case "/api/v1/accounts/:number/balance", "/api/v1/accounts/:number/close":
		return ratelimit.PinRateLimit
	case "/api/v1/admin/export", "/api/v1/admin/import":
		return ratelimit.AdminRateLimit
	default:
		return ratelimit.GeneralRateLimit
	}
}

// SuspiciousActivityMiddleware blocks an address after repeated PIN failures
func SuspiciousActivityMiddleware(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() != http.StatusUnauthorized || !pinGatedPaths[c.FullPath()] {
			return
		}

		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		key := fmt.Sprintf("suspicious:pin:%s", clientIP)

		allowed, err := limiter.CheckLimit(ctx, key, ratelimit.FailedPinRateLimit)
		if err != nil {
			logger.Error("Suspicious activity check failed", zap.Error(err))
			return
		}
		if allowed {
			return
		}

		logger.Warn("Blocking IP due to repeated failed PIN attempts",
			zap.String("ip", clientIP),
			zap.String("path", c.FullPath()),
		)
		if err := limiter.Block(ctx, clientIP, time.Hour); err != nil {
			logger.Error("Failed to block IP", zap.Error(err))
		}
	}
}
