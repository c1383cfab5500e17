package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	client *redis.Client
	prefix string
}

type RateLimitConfig struct {
	Requests int           // Number of requests allowed
	Window   time.Duration // Time window
}

// Common rate limit configurations
var (
	// PIN-gated endpoints - stricter limits
	PinRateLimit = RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
	}

	// Money movement endpoints
	TransactionRateLimit = RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	}

	// Bulk admin endpoints
	AdminRateLimit = RateLimitConfig{
		Requests: 3,
		Window:   time.Minute,
	}

	// Everything else
	GeneralRateLimit = RateLimitConfig{
		Requests: 100,
		Window:   time.Minute,
	}

	// Failed PIN attempts tolerated before an address is blocked
	FailedPinRateLimit = RateLimitConfig{
		Requests: 5,
		Window:   15 * time.Minute,
	}
)

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{
		client: redisClient,
		prefix: "gdbank:",
	}
}

type RateLimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	Reset      time.Time     `json:"reset"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Allowed    bool          `json:"allowed"`
}

// CheckLimit records one request against key and reports whether it fits the window.
func (rl *RateLimiter) CheckLimit(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	info, err := rl.CheckLimitWithInfo(ctx, key, config)
	if err != nil {
		return false, err
	}
	return info.Allowed, nil
}

// CheckLimitWithInfo is a sliding-window counter on a sorted set scored by
// request time in milliseconds.
func (rl *RateLimiter) CheckLimitWithInfo(ctx context.Context, key string, config RateLimitConfig) (*RateLimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-config.Window)
	redisKey := rl.prefix + key

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, redisKey, config.Window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	info := &RateLimitInfo{
		Limit:     config.Requests,
		Remaining: config.Requests - count - 1,
		Reset:     now.Add(config.Window),
		Allowed:   count < config.Requests,
	}
	if info.Remaining < 0 {
		info.Remaining = 0
	}

	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		expires := time.UnixMilli(int64(oldest[0].Score)).Add(config.Window)
		info.Reset = expires
		if !info.Allowed {
			info.RetryAfter = expires.Sub(now)
			if info.RetryAfter < time.Second {
				info.RetryAfter = time.Second
			}
		}
	}

	return info, nil
}

// Block temporarily blocks a key (for repeated failed PIN attempts)
func (rl *RateLimiter) Block(ctx context.Context, key string, duration time.Duration) error {
	return rl.client.Set(ctx, rl.blockKey(key), "1", duration).Err()
}

// IsBlocked checks if a key is blocked
func (rl *RateLimiter) IsBlocked(ctx context.Context, key string) (bool, error) {
	result, err := rl.client.Exists(ctx, rl.blockKey(key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

func (rl *RateLimiter) blockKey(key string) string {
	return fmt.Sprintf("%sblocked:%s", rl.prefix, key)
}
