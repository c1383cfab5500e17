package ddos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const requestKeyPrefix = "gdbank:ddos:requests:"

// Thresholds are requests per minute.
type Thresholds struct {
	// PerIP is the count at which a single address is flagged.
	PerIP int64
	// FloodIPs is how many flagged addresses trip emergency maintenance.
	FloodIPs int
}

var DefaultThresholds = Thresholds{PerIP: 1000, FloodIPs: 10}

type Protection struct {
	redis          *redis.Client
	maintenanceKey string
	thresholds     Thresholds
}

// NewProtection tracks per-address traffic. When a flood is detected the
// monitor sets maintenanceKey so the API stops serving ledger traffic.
func NewProtection(redisClient *redis.Client, maintenanceKey string, thresholds Thresholds) *Protection {
	return &Protection{
		redis:          redisClient,
		maintenanceKey: maintenanceKey,
		thresholds:     thresholds,
	}
}

// TrackRequest counts one request from ip and returns the count for the
// current minute.
func (p *Protection) TrackRequest(ctx context.Context, ip string) (int64, error) {
	key := requestKeyPrefix + ip

	pipe := p.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("track request: %w", err)
	}
	return incr.Val(), nil
}

// Exceeded reports whether count is over the per-address threshold.
func (p *Protection) Exceeded(count int64) bool {
	return count > p.thresholds.PerIP
}

// Monitor scans traffic every interval until ctx is done.
func (p *Protection) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.AnalyzeTraffic(ctx)
		}
	}
}

// AnalyzeTraffic returns the addresses over the per-address threshold and
// enables maintenance mode when there are too many of them.
func (p *Protection) AnalyzeTraffic(ctx context.Context) []string {
	suspiciousIPs := []string{}

	iter := p.redis.Scan(ctx, 0, requestKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		count, err := p.redis.Get(ctx, key).Int64()
		if err != nil {
			continue
		}

		if p.Exceeded(count) {
			ip := strings.TrimPrefix(key, requestKeyPrefix)
			suspiciousIPs = append(suspiciousIPs, ip)

			logger.Warn("Potential DDoS attack detected",
				zap.String("ip", ip),
				zap.Int64("requests_per_minute", count),
			)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Error("Failed to scan traffic", zap.Error(err))
	}

	if len(suspiciousIPs) >= p.thresholds.FloodIPs {
		logger.Error("Large-scale DDoS attack detected, enabling maintenance mode",
			zap.Int("suspicious_ips", len(suspiciousIPs)),
		)
		if err := p.redis.Set(ctx, p.maintenanceKey, "true", 0).Err(); err != nil {
			logger.Error("Failed to enable maintenance mode", zap.Error(err))
		}
	}

	return suspiciousIPs
}
