package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/darisadam/gdbank-ledger/internal/pkg/ddos"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDDoSMiddleware_ShedsNoisyAddress(t *testing.T) {
	logger.Init("test")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	protection := ddos.NewProtection(client, MaintenanceKey, ddos.Thresholds{PerIP: 2, FloodIPs: 10})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(DDoSMiddleware(protection))
	router.GET("/api/v1/accounts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("GET", "/api/v1/accounts", nil)
		req.RemoteAddr = "10.9.9.9:1000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// A different address is still served
	req, _ := http.NewRequest("GET", "/api/v1/accounts", nil)
	req.RemoteAddr = "10.9.9.10:1000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
