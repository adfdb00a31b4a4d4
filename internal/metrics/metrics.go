package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	// Memo Metrics
	MemoOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_operations_total",
			Help: "Total number of memo operations",
		},
		[]string{"operation"}, // list, get, create, update, delete
	)

	TagSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_tag_sync_total",
			Help: "Total number of memo tag synchronizations",
		},
		[]string{"result"}, // ok, error
	)

	TagSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "memo_tag_sync_duration_seconds",
			Help:    "Duration of memo tag synchronization",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	TagsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memo_tags_pruned_total",
			Help: "Total number of unused tags removed",
		},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status", "type"}, // success/failure, login/register/refresh
	)

	StreamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memo_stream_clients",
			Help: "Current number of memo stream websocket clients",
		},
	)
)

// TrackMemoOperation increments the memo operation counter
func TrackMemoOperation(operation string) {
	MemoOperationsTotal.WithLabelValues(operation).Inc()
}

// TrackAuthAttempt records authentication attempts
func TrackAuthAttempt(status, authType string) {
	AuthAttempts.WithLabelValues(status, authType).Inc()
}
