// Package metrics provides Prometheus metrics for the pogo parser.
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
			Name: "pogo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pogo_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Species Matcher Metrics
	SpeciesResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pogo_species_resolutions_total",
			Help: "Species mention resolutions by outcome",
		},
		[]string{"outcome"}, // "direct", "base", "form_only", "unresolved"
	)

	SpeciesReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pogo_species_reports_total",
			Help: "Unresolved species mentions by report kind",
		},
		[]string{"kind", "severity"},
	)

	CatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pogo_catalog_entries",
			Help: "Number of entries in the loaded species catalog",
		},
	)

	// Date Normalizer Metrics
	DateParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pogo_date_parse_total",
			Help: "Date phrase parses by result",
		},
		[]string{"result"}, // "single", "range", "two_day", "empty"
	)

	// Page Fetcher Metrics
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pogo_fetch_requests_total",
			Help: "Outbound page fetches by result",
		},
		[]string{"result"}, // "ok", "error", "status"
	)

	FetchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pogo_fetch_cache_hits_total",
			Help: "Page fetches served from the in-memory cache",
		},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pogo_fetch_duration_seconds",
			Help:    "Time taken to fetch a page",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// Event Metrics
	EventsAssembledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pogo_events_assembled_total",
			Help: "Events assembled by date status",
		},
		[]string{"dated"}, // "true", "false"
	)
)
