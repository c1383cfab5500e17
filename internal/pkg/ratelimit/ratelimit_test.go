package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupRateLimiterTest(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	assert.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	rl := NewRateLimiter(client)
	return rl, mr
}

func TestCheckLimit_WithinLimit(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	key := "test:account:1001"
	config := RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
	}

	// First request should be allowed
	allowed, err := rl.CheckLimit(ctx, key, config)
	assert.NoError(t, err)
	assert.True(t, allowed)

	// Additional requests up to limit should be allowed
	for i := 0; i < 3; i++ {
		allowed, err = rl.CheckLimit(ctx, key, config)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestCheckLimit_ExceedsLimit(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	key := "test:exceed:456"
	config := RateLimitConfig{
		Requests: 3,
		Window:   time.Minute,
	}

	// Make requests up to limit
	for i := 0; i < 3; i++ {
		allowed, err := rl.CheckLimit(ctx, key, config)
		assert.NoError(t, err)
		assert.True(t, allowed)
	}

	// 4th request should be blocked
	allowed, err := rl.CheckLimit(ctx, key, config)
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckLimitWithInfo_Returns_Correct_Info(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	key := "test:info:789"
	config := RateLimitConfig{
		Requests: 5,
		Window:   time.Minute,
	}

	info, err := rl.CheckLimitWithInfo(ctx, key, config)
	assert.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 5, info.Limit)
	assert.Equal(t, 4, info.Remaining)

	// Make more requests
	_, err = rl.CheckLimitWithInfo(ctx, key, config)
	assert.NoError(t, err)
	_, err = rl.CheckLimitWithInfo(ctx, key, config)
	assert.NoError(t, err)

	info, err = rl.CheckLimitWithInfo(ctx, key, config)
	assert.NoError(t, err)
	assert.True(t, info.Allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestCheckLimitWithInfo_RetryAfterWhenBlocked(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	config := RateLimitConfig{Requests: 1, Window: time.Minute}

	first, err := rl.CheckLimitWithInfo(ctx, "pin:1001", config)
	assert.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Zero(t, first.RetryAfter)

	second, err := rl.CheckLimitWithInfo(ctx, "pin:1001", config)
	assert.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)
	assert.True(t, second.RetryAfter > 0 && second.RetryAfter <= time.Minute)
	assert.True(t, mr.Exists("gdbank:pin:1001"))
}

func TestBlock_And_IsBlocked(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	key := "1.2.3.4"

	// Initially not blocked
	blocked, err := rl.IsBlocked(ctx, key)
	assert.NoError(t, err)
	assert.False(t, blocked)

	// Block the key
	err = rl.Block(ctx, key, 5*time.Minute)
	assert.NoError(t, err)

	// Now should be blocked
	blocked, err = rl.IsBlocked(ctx, key)
	assert.NoError(t, err)
	assert.True(t, blocked)
	assert.True(t, mr.Exists("gdbank:blocked:1.2.3.4"))
}

func TestBlock_Expires(t *testing.T) {
	rl, mr := setupRateLimiterTest(t)
	defer mr.Close()

	ctx := context.Background()
	key := "10.0.0.7"

	// Block for 1 second
	err := rl.Block(ctx, key, 1*time.Second)
	assert.NoError(t, err)

	// Immediately blocked
	blocked, _ := rl.IsBlocked(ctx, key)
	assert.True(t, blocked)

	// Fast-forward time in miniredis
	mr.FastForward(2 * time.Second)

	// Should no longer be blocked
	blocked, err = rl.IsBlocked(ctx, key)
	assert.NoError(t, err)
	assert.False(t, blocked)
}

func TestPredefinedConfigs(t *testing.T) {
	// Test that predefined configs are sensible
	assert.Equal(t, 5, PinRateLimit.Requests)
	assert.Equal(t, time.Minute, PinRateLimit.Window)

	assert.Equal(t, 10, TransactionRateLimit.Requests)
	assert.Equal(t, time.Minute, TransactionRateLimit.Window)

	assert.Equal(t, 100, GeneralRateLimit.Requests)
	assert.Equal(t, time.Minute, GeneralRateLimit.Window)

	assert.Equal(t, 3, AdminRateLimit.Requests)

	assert.Equal(t, 5, FailedPinRateLimit.Requests)
	assert.Equal(t, 15*time.Minute, FailedPinRateLimit.Window)
}
