package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransaction(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("DEPOSIT", "success"))

	RecordTransaction("DEPOSIT", 250)

	after := testutil.ToFloat64(OperationsTotal.WithLabelValues("DEPOSIT", "success"))
	assert.Equal(t, before+1, after)
}

func TestRecordOperationError(t *testing.T) {
	before := testutil.ToFloat64(OperationErrors.WithLabelValues("WITHDRAW", "insufficient_funds"))

	RecordOperationError("WITHDRAW", "insufficient_funds")

	after := testutil.ToFloat64(OperationErrors.WithLabelValues("WITHDRAW", "insufficient_funds"))
	assert.Equal(t, before+1, after)
}

func TestRecordPinCheck(t *testing.T) {
	before := testutil.ToFloat64(PinChecksTotal.WithLabelValues("failed"))

	RecordPinCheck(false)

	assert.Equal(t, before+1, testutil.ToFloat64(PinChecksTotal.WithLabelValues("failed")))
}

func TestRecordPersistence(t *testing.T) {
	before := testutil.ToFloat64(PersistenceTotal.WithLabelValues("file", "save_all", "failed"))

	RecordPersistence("file", "save_all", errors.New("disk full"), 0.01)

	after := testutil.ToFloat64(PersistenceTotal.WithLabelValues("file", "save_all", "failed"))
	assert.Equal(t, before+1, after)
}

func TestUpdateAccountMetrics(t *testing.T) {
	UpdateAccountMetrics("Savings", "Active", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(AccountsTotal.WithLabelValues("Savings", "Active")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))

	RecordHTTPRequest("GET", "/health", 200, 0.002)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordRateLimited(t *testing.T) {
	before := testutil.ToFloat64(RateLimitedTotal.WithLabelValues("blocked"))

	RecordRateLimited("blocked")

	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitedTotal.WithLabelValues("blocked")))
}
