package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/darisadam/gdbank-ledger/internal/api/middleware"
	"github.com/darisadam/gdbank-ledger/internal/pkg/logger"
	"github.com/darisadam/gdbank-ledger/internal/repository"
	"github.com/darisadam/gdbank-ledger/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newFileLedger(t *testing.T) service.LedgerService {
	t.Helper()
	logger.Init("test")
	dir := t.TempDir()

	ledgerService, err := service.NewLedgerService(
		context.Background(),
		repository.NewFileAccountRepository(filepath.Join(dir, "accounts.csv")),
		repository.NewFileTransactionLogRepository(filepath.Join(dir, "transactions.log")),
		repository.NewFileAccountRepository(filepath.Join(dir, "accounts_export.csv")),
		nil,
		service.Options{PINHashCost: bcrypt.MinCost, LogDir: dir, Backend: "file"},
	)
	require.NoError(t, err)
	return ledgerService
}

func setupTestRouter(t *testing.T, opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(newFileLedger(t), opts)
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_OpsEndpoints(t *testing.T) {
	router := setupTestRouter(t, RouterOptions{})

	w := do(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	w = do(router, "GET", "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ServiceName, decode(t, w)["service"])

	w = do(router, "GET", "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gdbank_")
}

func TestRouter_ReadyReportsFailedChecks(t *testing.T) {
	router := setupTestRouter(t, RouterOptions{
		ReadyChecks: map[string]ReadyCheck{
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		},
	})

	w := do(router, "GET", "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	checks := decode(t, w)["checks"].(map[string]interface{})
	assert.Equal(t, "connection refused", checks["postgres"])
}

func TestRouter_LedgerScenario(t *testing.T) {
	router := setupTestRouter(t, RouterOptions{})

	w := do(router, "POST", "/api/v1/accounts",
		`{"name":"Asha","age":30,"account_type":"Savings","initial_deposit":700,"pin":"1111"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1001), decode(t, w)["account_number"])

	w = do(router, "POST", "/api/v1/accounts",
		`{"name":"Ravi","age":41,"account_type":"Savings","initial_deposit":500,"pin":"2222"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1002), decode(t, w)["account_number"])

	w = do(router, "POST", "/api/v1/transactions/transfer",
		`{"from_account":1001,"to_account":1002,"amount":200,"pin":"1111"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "500", body["from_balance"])
	assert.Equal(t, "700", body["to_balance"])

	w = do(router, "GET", "/api/v1/accounts/1001/balance", "", map[string]string{middleware.PinHeader: "1111"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Balance: 500.00", decode(t, w)["message"])

	w = do(router, "GET", "/api/v1/accounts/1001/balance", "", map[string]string{middleware.PinHeader: "9999"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, "POST", "/api/v1/transactions/withdraw",
		`{"account_number":1001,"amount":600,"pin":"1111"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, "GET", "/api/v1/accounts/1002/transactions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["records"].([]interface{})
	require.Len(t, records, 2)
	assert.True(t, strings.Contains(records[1].(string), "| 1002 |"))

	w = do(router, "GET", "/api/v1/reports/active-count", "", nil)
	assert.Equal(t, float64(2), decode(t, w)["active_accounts"])

	w = do(router, "POST", "/api/v1/accounts/1002/close", `{"pin":"2222"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", "/api/v1/accounts?status=inactive", "", nil)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = do(router, "POST", "/api/v1/accounts/1002/reopen", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, "GET", "/api/v1/accounts/4242", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MaintenanceWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set(middleware.MaintenanceKey, "true"))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	router := setupTestRouter(t, RouterOptions{Redis: client, RateLimitEnabled: true})

	w := do(router, "GET", "/api/v1/accounts", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(router, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Del(middleware.MaintenanceKey)
	w = do(router, "GET", "/api/v1/accounts", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
}
