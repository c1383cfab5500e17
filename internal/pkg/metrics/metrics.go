package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdbank_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Ledger Metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_ledger_operations_total",
			Help: "Total number of ledger operations",
		},
		[]string{"operation", "status"},
	)

	TransactionAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdbank_transaction_amount",
			Help:    "Amounts moved by deposits, withdrawals and transfers",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000},
		},
		[]string{"operation"},
	)

	OperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_operation_errors_total",
			Help: "Total number of rejected ledger operations",
		},
		[]string{"operation", "error_type"},
	)

	// Account Metrics
	AccountsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gdbank_accounts_total",
			Help: "Number of accounts by type and status",
		},
		[]string{"type", "status"},
	)

	// Authorization Metrics
	PinChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_pin_checks_total",
			Help: "Total number of PIN authorization attempts",
		},
		[]string{"status"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"reason"},
	)

	// Persistence Metrics
	PersistenceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gdbank_persistence_operations_total",
			Help: "Total number of store reads and writes",
		},
		[]string{"backend", "operation", "status"},
	)

	PersistenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gdbank_persistence_duration_seconds",
			Help:    "Store read and write duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)

	// System Metrics
	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gdbank_system_info",
			Help: "System information",
		},
		[]string{"version", "backend", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, status int, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordOperation records a completed ledger operation
func RecordOperation(operation string) {
	OperationsTotal.WithLabelValues(operation, "success").Inc()
}

// RecordTransaction records a money movement and its amount
func RecordTransaction(operation string, amount float64) {
	OperationsTotal.WithLabelValues(operation, "success").Inc()
	TransactionAmount.WithLabelValues(operation).Observe(amount)
}

// RecordOperationError records a rejected ledger operation
func RecordOperationError(operation, errorType string) {
	OperationsTotal.WithLabelValues(operation, "failed").Inc()
	OperationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordPinCheck records a PIN authorization attempt
func RecordPinCheck(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	PinChecksTotal.WithLabelValues(status).Inc()
}

// RecordRateLimited records a request turned away by the rate limiter
func RecordRateLimited(reason string) {
	RateLimitedTotal.WithLabelValues(reason).Inc()
}

// RecordPersistence records a store read or write
func RecordPersistence(backend, operation string, err error, duration float64) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	PersistenceTotal.WithLabelValues(backend, operation, status).Inc()
	PersistenceDuration.WithLabelValues(backend, operation).Observe(duration)
}

// UpdateAccountMetrics sets the account gauge for one type/status pair
func UpdateAccountMetrics(accountType, status string, count int) {
	AccountsTotal.WithLabelValues(accountType, status).Set(float64(count))
}

// SetSystemInfo sets system information metrics
func SetSystemInfo(version, backend, goVersion string) {
	SystemInfo.WithLabelValues(version, backend, goVersion).Set(1)
}
