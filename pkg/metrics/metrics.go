// Package metrics holds the Prometheus collectors of the service. Collectors are registered with
// the default registry and served by [promhttp.Handler] on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "im_atlas"

var (
	atlasAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "atlas",
			Name:      "api_calls_total",
			Help:      "Total number of Atlas Admin API calls by operation and HTTP status",
		},
		[]string{"operation", "status"},
	)

	atlasAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "atlas",
			Name:      "api_latency_seconds",
			Help:      "Latency of Atlas Admin API calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"operation"},
	)

	provisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cluster",
			Name:      "provisions_total",
			Help:      "Total number of cluster provisioning attempts by result",
		},
		[]string{"result"},
	)

	teardownsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cluster",
			Name:      "teardowns_total",
			Help:      "Total number of cluster teardowns by result",
		},
		[]string{"result"},
	)

	cleanupRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cleanup",
			Name:      "clusters_total",
			Help:      "Total number of clusters handled by event cleanup by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		atlasAPICallsTotal,
		atlasAPILatency,
		provisionsTotal,
		teardownsTotal,
		cleanupRunsTotal,
	)
}

// Results used as label values.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultConflict = "conflict"
)

// ObserveAtlasCall records an Atlas API call. A status of 0 means no HTTP response was received.
func ObserveAtlasCall(operation string, status int, duration time.Duration) {
	statusLabel := "transport_error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	atlasAPICallsTotal.WithLabelValues(operation, statusLabel).Inc()
	atlasAPILatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordProvision(result string) {
	provisionsTotal.WithLabelValues(result).Inc()
}

func RecordTeardown(result string) {
	teardownsTotal.WithLabelValues(result).Inc()
}

func RecordCleanup(result string) {
	cleanupRunsTotal.WithLabelValues(result).Inc()
}
