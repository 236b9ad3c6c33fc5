package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	InventoryItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_items",
			Help: "Number of inventory items by status",
		},
		[]string{"status"},
	)

	ItemsProcuredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_items_procured_total",
			Help: "Total number of units taken into inventory",
		},
	)

	LedgerLinesAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_lines_added_total",
			Help: "Total number of sale lines added to a ledger",
		},
	)

	LedgerLinesRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_lines_removed_total",
			Help: "Total number of sale lines removed from a ledger",
		},
	)

	LedgerFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_failure_total",
			Help: "Total number of rejected ledger operations",
		},
		[]string{"operation", "reason"},
	)

	ConfirmAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confirm_attempts_total",
			Help: "Total number of sale confirmation attempts",
		},
	)

	ConfirmSuccessTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confirm_success_total",
			Help: "Total number of confirmed sales",
		},
	)

	ConfirmFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirm_failure_total",
			Help: "Total number of failed sale confirmations",
		},
		[]string{"reason"},
	)

	SaleAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sale_amount_total",
			Help: "Sum of confirmed sale totals",
		},
	)

	SaleLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_lines",
			Help:    "Number of lines per confirmed sale",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	LockAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_lock_attempts_total",
			Help: "Total number of ledger lock attempts",
		},
		[]string{"lock_type"},
	)

	LockSuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_lock_success_total",
			Help: "Total number of successful ledger lock acquisitions",
		},
		[]string{"lock_type"},
	)

	LockFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_lock_failure_total",
			Help: "Total number of failed ledger lock acquisitions",
		},
		[]string{"lock_type", "reason"},
	)

	LockHoldDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_lock_duration_seconds",
			Help:    "Duration of ledger lock hold time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"lock_type"},
	)
)

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func TimeRedisCommand(command string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		RedisCommandDuration.WithLabelValues(command).Observe(duration)
	}
}

func TimeLockHold(lockType string) func() {
	start := time.Now()
	return func() {
		LockHoldDuration.WithLabelValues(lockType).Observe(time.Since(start).Seconds())
	}
}

func RecordLockAttempt(lockType string) {
	LockAttemptsTotal.WithLabelValues(lockType).Inc()
}

func RecordLockSuccess(lockType string) {
	LockSuccessTotal.WithLabelValues(lockType).Inc()
}

func RecordLockFailure(lockType, reason string) {
	LockFailureTotal.WithLabelValues(lockType, reason).Inc()
}

func RecordItemsProcured(n int) {
	ItemsProcuredTotal.Add(float64(n))
}

func RecordSaleConfirmed(total decimal.Decimal, lines int) {
	ConfirmSuccessTotal.Inc()
	SaleAmountTotal.Add(total.InexactFloat64())
	SaleLines.Observe(float64(lines))
}

func SetInventoryCount(status string, n int) {
	InventoryItems.WithLabelValues(status).Set(float64(n))
}
