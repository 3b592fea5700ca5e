package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records store operation latency by operation and collection.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobmandu_store_query_latency_seconds",
		Help:    "Document store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ReportsTotal counts moderation reports by outcome.
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_reports_total",
		Help: "Total number of listing reports by outcome",
	}, []string{"outcome"})

	// AutoBansTotal counts owners blocked by the report threshold.
	AutoBansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobmandu_auto_bans_total",
		Help: "Total number of listings removed and owners blocked by reports",
	})

	// ListingViewsTotal counts view tracking attempts by outcome.
	ListingViewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_listing_views_total",
		Help: "Total number of listing view tracking attempts by outcome",
	}, []string{"outcome"})

	// ListingsPublishedTotal counts new listings by category.
	ListingsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_listings_published_total",
		Help: "Total number of published listings by category",
	}, []string{"category"})

	// FeedRecomputeDuration records how long a feed recompute takes.
	FeedRecomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jobmandu_feed_recompute_seconds",
		Help:    "Feed recompute latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})

	// ExternalCallsTotal counts calls to third-party services by result.
	ExternalCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_external_calls_total",
		Help: "Total calls to external services by service and result",
	}, []string{"service", "result"})

	// WebSocketConnectionsTotal is the gauge of live feed connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jobmandu_feed_ws_connections",
		Help: "Number of active live feed WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmandu_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records store latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveExternalCall records the result of a call to an external service.
func ObserveExternalCall(service string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExternalCallsTotal.WithLabelValues(service, result).Inc()
}
