// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Normalization metrics
	RowsNormalized prometheus.Counter

	// Expansion metrics
	ExpansionFetches   prometheus.Counter
	ExpansionFailures  prometheus.Counter
	ExpansionsComputed prometheus.Counter

	// Matching metrics
	ComparisonsComputed prometheus.Counter
	ComparisonDuration  prometheus.Histogram
	MatchesFound        *prometheus.CounterVec // by match pass: ticker, name
	FuzzyComparisons    prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheErrors *prometheus.CounterVec // by operation: get, put

	// Overlap metrics
	OverlapRuns prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fund_overlap_lab"
	}

	return &Metrics{
		RowsNormalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "normalization",
			Name:      "rows_normalized_total",
			Help:      "Total number of raw holdings rows normalized",
		}),

		ExpansionFetches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "underlying_fetches_total",
			Help:      "Total number of underlying fund holdings fetches",
		}),
		ExpansionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "underlying_fetch_failures_total",
			Help:      "Total number of underlying fund fetches skipped on failure",
		}),
		ExpansionsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expansion",
			Name:      "expansions_computed_total",
			Help:      "Total number of hierarchy expansions computed (memo misses)",
		}),

		ComparisonsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "comparisons_computed_total",
			Help:      "Total number of fund/institution comparisons computed",
		}),
		ComparisonDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "comparison_duration_seconds",
			Help:      "Duration of comparison computations",
			Buckets:   prometheus.DefBuckets,
		}),
		MatchesFound: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "matches_found_total",
			Help:      "Total number of matches found by pass",
		}, []string{"pass"}),
		FuzzyComparisons: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "fuzzy_comparisons_total",
			Help:      "Total number of pairwise fuzzy name comparisons scored",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of comparison cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of comparison cache misses (absent, expired or unreadable)",
		}),
		CacheErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total number of cache store errors by operation",
		}, []string{"operation"}),

		OverlapRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlap",
			Name:      "runs_total",
			Help:      "Total number of overlap aggregations computed",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")
