package ddos

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProtection(t *testing.T, thresholds Thresholds) (*miniredis.Miniredis, *Protection) {
	logger.Init("test")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewProtection(client, "gdbank:maintenance", thresholds)
}

func TestTrackRequest_Counts(t *testing.T) {
	mr, p := setupProtection(t, DefaultThresholds)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := p.TrackRequest(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}

	assert.True(t, mr.TTL(requestKeyPrefix+"10.0.0.1") > 0)
}

func TestExceeded(t *testing.T) {
	_, p := setupProtection(t, Thresholds{PerIP: 2, FloodIPs: 1})

	assert.False(t, p.Exceeded(2))
	assert.True(t, p.Exceeded(3))
}

func TestAnalyzeTraffic_FlagsWithoutFlood(t *testing.T) {
	mr, p := setupProtection(t, Thresholds{PerIP: 2, FloodIPs: 2})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := p.TrackRequest(ctx, "10.0.0.1")
		require.NoError(t, err)
	}
	_, err := p.TrackRequest(ctx, "10.0.0.2")
	require.NoError(t, err)

	suspicious := p.AnalyzeTraffic(ctx)
	assert.Equal(t, []string{"10.0.0.1"}, suspicious)
	assert.False(t, mr.Exists("gdbank:maintenance"))
}

func TestAnalyzeTraffic_FloodEnablesMaintenance(t *testing.T) {
	mr, p := setupProtection(t, Thresholds{PerIP: 1, FloodIPs: 2})
	ctx := context.Background()

	for n := 1; n <= 2; n++ {
		ip := fmt.Sprintf("10.0.0.%d", n)
		for i := 0; i < 2; i++ {
			_, err := p.TrackRequest(ctx, ip)
			require.NoError(t, err)
		}
	}

	suspicious := p.AnalyzeTraffic(ctx)
	assert.Len(t, suspicious, 2)

	val, err := mr.Get("gdbank:maintenance")
	require.NoError(t, err)
	assert.Equal(t, "true", val)
}
