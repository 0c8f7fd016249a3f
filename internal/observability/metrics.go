package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dainiki_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dainiki_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// EntriesWritten counts journal entry mutations by operation.
	EntriesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dainiki_entries_written_total",
		Help: "Total number of journal entry mutations by operation (create, update, delete)",
	}, []string{"operation"})

	// DuplicateDateRejections counts rejected one-entry-per-day violations.
	DuplicateDateRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dainiki_duplicate_date_rejections_total",
		Help: "Total number of entry writes rejected by the one-entry-per-day rule",
	})

	// AnalyticsComputeDuration records how long an analytics summary build takes.
	AnalyticsComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dainiki_analytics_compute_duration_seconds",
		Help:    "Duration of analytics summary computation in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// PinVerifications counts PIN verification attempts by outcome.
	PinVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dainiki_pin_verifications_total",
		Help: "Total number of PIN verification attempts by outcome (ok, mismatch, unset)",
	}, []string{"outcome"})

	// ExportsRendered counts export documents rendered by format.
	ExportsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dainiki_exports_rendered_total",
		Help: "Total number of export documents rendered by format",
	}, []string{"format"})
)
