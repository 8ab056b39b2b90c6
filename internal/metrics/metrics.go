// Package metrics registers the Prometheus metrics used by the gateway.
// Import this package (via blank import) from the server entry point to
// register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuotesServed counts quotes handed out, labelled by provider and
	// outcome ("success", "error").
	QuotesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegw_quotes_served_total",
			Help: "Total number of quotes served by the gateway.",
		},
		[]string{"provider", "status"},
	)

	// FetchDuration observes end-to-end upstream fetch latency in seconds.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotegw_fetch_duration_seconds",
			Help:    "End-to-end provider fetch duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// CacheHits counts requests answered from the quote cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotegw_cache_hits_total",
			Help: "Total requests served from the in-memory quote cache.",
		},
	)

	// CacheMisses counts requests that fell through to a provider.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotegw_cache_misses_total",
			Help: "Total requests that required an upstream provider fetch.",
		},
	)

	// CacheSize tracks the current number of quotes held in the cache.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotegw_cache_size",
			Help: "Current number of quotes held in the in-memory cache.",
		},
	)

	// ProviderErrors counts upstream errors broken down by provider and error
	// type ("provider_error", "timeout", "decode").
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegw_provider_errors_total",
			Help: "Total provider errors by type.",
		},
		[]string{"provider", "error_type"},
	)

	// CacheBlocked tracks whether the gateway cache is currently blocked:
	// 0 = accepting writes, 1 = blocked.
	CacheBlocked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotegw_cache_blocked",
			Help: "Whether the quote cache is blocked for writes (0=open 1=blocked).",
		},
	)
)
