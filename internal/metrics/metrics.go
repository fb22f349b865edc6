// Package metrics provides Prometheus metrics collection for the packing assistant.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks HTTP request duration by method, path, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, path, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// ItemSplitsTotal counts order lines by split outcome (whole, split, invalid).
	ItemSplitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_item_splits_total",
			Help: "Total number of order lines processed by the item splitter",
		},
		[]string{"outcome"},
	)

	// BoxAssignDuration tracks how long a box derivation takes.
	BoxAssignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "packing_box_assign_duration_seconds",
			Help:    "Box assignment duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// SessionEditsTotal counts applied session edits by kind.
	SessionEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_session_edits_total",
			Help: "Total number of packing session edits",
		},
		[]string{"kind"},
	)

	// ActiveSessions tracks the number of open packing sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "packing_active_sessions",
			Help: "Number of open packing sessions",
		},
	)

	// DraftOperationsTotal tracks draft loads and saves by result.
	DraftOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_draft_operations_total",
			Help: "Total number of draft store operations",
		},
		[]string{"operation", "result"},
	)

	// DraftReconcileTotal counts session opens by reconciliation source.
	DraftReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_draft_reconcile_total",
			Help: "Total number of draft reconciliations by source",
		},
		[]string{"source"},
	)

	// DraftOrphansTotal counts draft entries dropped because their unit no longer exists.
	DraftOrphansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "packing_draft_orphans_total",
			Help: "Total number of orphaned draft entries dropped on reconciliation",
		},
	)

	// CapacityLookupsTotal tracks capacity resolution by result.
	CapacityLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_capacity_lookups_total",
			Help: "Total number of capacity lookups",
		},
		[]string{"result"},
	)

	// PackingListExportsTotal counts packing-list downloads by format and result.
	PackingListExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_list_exports_total",
			Help: "Total number of packing list exports",
		},
		[]string{"format", "result"},
	)

	// StoreCircuitState reports each store breaker's state (0 closed, 1 open, 2 half-open).
	StoreCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "packing_store_circuit_state",
			Help: "Circuit breaker state per store (0 closed, 1 open, 2 half-open)",
		},
		[]string{"store"},
	)

	// StoreCircuitTransitionsTotal counts breaker transitions per store and target state.
	StoreCircuitTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packing_store_circuit_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"store", "to"},
	)

	// CacheOperationsTotal tracks cache operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "result"},
	)

	// CacheSize tracks current cache size.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current cache size",
		},
	)

	// CacheCapacity tracks cache capacity.
	CacheCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_capacity",
			Help: "Cache capacity",
		},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordItemSplit records the outcome of splitting one order line.
func RecordItemSplit(outcome string) {
	ItemSplitsTotal.WithLabelValues(outcome).Inc()
}

// RecordBoxAssign records the duration of a box derivation.
func RecordBoxAssign(duration time.Duration) {
	BoxAssignDuration.Observe(duration.Seconds())
}

// RecordSessionEdit records one applied packing session edit.
func RecordSessionEdit(kind string) {
	SessionEditsTotal.WithLabelValues(kind).Inc()
}

// SetActiveSessions updates the open session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordDraftOperation records a draft load or save.
func RecordDraftOperation(operation, result string) {
	DraftOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordDraftReconcile records where a reopened session's state came from.
func RecordDraftReconcile(source string, orphans int) {
	DraftReconcileTotal.WithLabelValues(source).Inc()
	if orphans > 0 {
		DraftOrphansTotal.Add(float64(orphans))
	}
}

// RecordCapacityLookup records a capacity resolution result (hit, miss, unbounded, error).
func RecordCapacityLookup(result string) {
	CapacityLookupsTotal.WithLabelValues(result).Inc()
}

// RecordPackingListExport records a packing-list export.
func RecordPackingListExport(format, result string) {
	PackingListExportsTotal.WithLabelValues(format, result).Inc()
}

// RecordCircuitTransition records a store breaker moving to a new state.
func RecordCircuitTransition(store, to string, code int) {
	StoreCircuitState.WithLabelValues(store).Set(float64(code))
	StoreCircuitTransitionsTotal.WithLabelValues(store, to).Inc()
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// UpdateCacheMetrics updates cache size and capacity metrics.
func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}
