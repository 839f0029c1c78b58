// Package metrics provides Prometheus metrics for the card linker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlinker_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlinker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Catalog Metrics
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlinker_catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	CatalogReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlinker_catalog_reload_duration_seconds",
			Help:    "Time taken to load and index the catalog",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CatalogCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardlinker_catalog_cards",
			Help: "Number of indexed cards in the active catalog",
		},
	)

	IndexKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cardlinker_index_keys",
			Help: "Number of distinct keys per lookup index",
		},
		[]string{"index"},
	)

	// Lookup Metrics
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlinker_lookups_total",
			Help: "Card lookups by match kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "found", "ambiguous", "not_found"
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardlinker_resolve_duration_seconds",
			Help:    "Time taken to resolve a query against the index",
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	ResolveCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlinker_resolve_cache_hits_total",
			Help: "Resolve cache hit count",
		},
	)

	ResolveCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlinker_resolve_cache_misses_total",
			Help: "Resolve cache miss count",
		},
	)

	DroppedWhileLoading = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlinker_dropped_while_loading_total",
			Help: "Triggers dropped because the catalog was still rebuilding",
		},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardlinker_sessions",
			Help: "Number of tracked response sessions",
		},
	)

	SessionsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlinker_sessions_purged_total",
			Help: "Sessions removed by the expiry purge",
		},
	)

	// Interaction Metrics
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlinker_interactions_total",
			Help: "Control interactions by action and result",
		},
		[]string{"action", "result"}, // result: "applied", "unauthorized", "invalid", "failed"
	)

	// Messenger Metrics
	MessengerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlinker_messenger_requests_total",
			Help: "Outbound chat API requests by operation and result",
		},
		[]string{"op", "result"},
	)
)
