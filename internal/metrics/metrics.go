package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the service. One instance is
// created at startup and shared by every component that reports.
type Registry struct {
	registry *prometheus.Registry

	// Screening
	ScreensTotal   *prometheus.CounterVec // labels: source (api|cli|scheduler), status (ok|error)
	ScreenDuration prometheus.Histogram

	// External calls
	MassiveRequests *prometheus.CounterVec // labels: status (ok|error|breaker_open)
	InsightRequests *prometheus.CounterVec // labels: provider, status

	// Cache
	CacheHits   *prometheus.CounterVec // labels: cache (chain|digest|movers)
	CacheMisses *prometheus.CounterVec

	// Scheduler
	JobRuns *prometheus.CounterVec // labels: job, status
}

// New creates a registry with all service metrics registered.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		ScreensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_screens_total",
				Help: "Total number of screening invocations",
			},
			[]string{"source", "status"},
		),

		ScreenDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scout_screen_duration_seconds",
				Help:    "End-to-end screening duration including snapshot fetch",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		MassiveRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_massive_requests_total",
				Help: "Total requests to the Massive snapshot API",
			},
			[]string{"status"},
		),

		InsightRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_insight_requests_total",
				Help: "Total insight generation requests by provider",
			},
			[]string{"provider", "status"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_cache_hits_total",
				Help: "Total cache hits by cache type",
			},
			[]string{"cache"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_cache_misses_total",
				Help: "Total cache misses by cache type",
			},
			[]string{"cache"},
		),

		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_job_runs_total",
				Help: "Total scheduled job runs by outcome",
			},
			[]string{"job", "status"},
		),
	}

	r.registry.MustRegister(
		r.ScreensTotal,
		r.ScreenDuration,
		r.MassiveRequests,
		r.InsightRequests,
		r.CacheHits,
		r.CacheMisses,
		r.JobRuns,
	)

	return r
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
