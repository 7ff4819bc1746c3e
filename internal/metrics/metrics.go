package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ResultsComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoestima_results_computed_total",
			Help: "Results views computed, by general level",
		},
		[]string{"level"},
	)

	VeracityBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "autoestima_veracity_blocked_total",
			Help: "Results withheld by the veracity gate",
		},
	)

	ActivitiesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoestima_activities_completed_total",
			Help: "Activity completions, by category",
		},
		[]string{"category"},
	)

	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoestima_persistence_failures_total",
			Help: "Document writes that failed after retries, by operation",
		},
		[]string{"operation"},
	)

	LiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "autoestima_live_feed_connections",
			Help: "Admin live feed websocket connections",
		},
	)
)

// Register adds every collector to reg
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RequestCounter,
		RequestDuration,
		ResultsComputed,
		VeracityBlocked,
		ActivitiesCompleted,
		PersistenceFailures,
		LiveConnections,
	)
}
