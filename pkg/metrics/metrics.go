// Package metrics exposes Prometheus instrumentation for the ProjectHub
// analytics engine. Metrics are registered via promauto and served on
// the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Analytics computation latency (seconds), per query handler.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Analytics query handler duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"query", "cache"}, // cache: hit, miss, bypass
	)

	// Database query latency (seconds).
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// Cache operation outcomes.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "outcome"}, // outcome: hit, miss, error
	)

	// Report export counts.
	ReportExports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_exports_total",
			Help: "Total number of progress report exports",
		},
		[]string{"format"}, // format: csv, pdf
	)

	// Students currently flagged at risk, per supervisor dashboard build.
	AtRiskStudents = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "at_risk_students",
			Help: "Number of students flagged at risk in the last dashboard build",
		},
		[]string{"supervisor_id"},
	)
)

// RecordHTTPRequestDuration records HTTP request latency.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordQueryDuration records analytics query handler latency.
func RecordQueryDuration(query, cache string, duration time.Duration) {
	QueryDuration.WithLabelValues(query, cache).Observe(duration.Seconds())
}

// RecordDBQueryDuration records database query latency.
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementCacheOperation increments the cache operation counter.
func IncrementCacheOperation(operation, outcome string) {
	CacheOperations.WithLabelValues(operation, outcome).Inc()
}

// IncrementReportExport increments the report export counter.
func IncrementReportExport(format string) {
	ReportExports.WithLabelValues(format).Inc()
}

// SetAtRiskStudents records the at-risk student count for a supervisor.
func SetAtRiskStudents(supervisorID string, count int) {
	AtRiskStudents.WithLabelValues(supervisorID).Set(float64(count))
}
