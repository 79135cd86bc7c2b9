package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hoopline",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of scoring API endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hoopline",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Error responses by endpoint and code",
		},
		[]string{"endpoint", "code"},
	)

	APIRateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hoopline",
			Subsystem: "api",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
	)

	BatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hoopline",
			Subsystem: "api",
			Name:      "batch_size",
			Help:      "Matchups per batch scoring request",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 250},
		},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors, APIRateLimited, BatchSize)
	})
}
