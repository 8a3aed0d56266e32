// Package metrics exposes Prometheus instrumentation for the analytics pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheLookups counts snapshot lookups by result: hit, miss, bypass or
	// expired.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_lookups_total",
			Help: "Snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// CacheFallbacks counts degraded responses by kind: stale or default.
	CacheFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_cache_fallbacks_total",
			Help: "Responses served from a stale snapshot or the zeroed default after a fetch failure",
		},
		[]string{"kind"},
	)

	// FetchDuration times each backend listing by collection and outcome.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_backend_fetch_duration_seconds",
			Help:    "Backend listing request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "outcome"},
	)

	LateTaskUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_late_task_updates_total",
			Help: "Best-effort late status writes to the backend by outcome",
		},
		[]string{"outcome"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
