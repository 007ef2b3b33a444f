// Package metrics exposes Prometheus instruments for the completion engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for CompletionRequests.
const (
	OutcomeOK = "ok"
)

var (
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirage_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mirage_cache_entries",
			Help: "Number of queries currently cached, summed over every engine cache in the process",
		},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mirage_completion_requests_total",
			Help: "Total number of completion service calls by outcome",
		},
		[]string{"outcome"},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mirage_completion_duration_seconds",
			Help:    "Duration of completion service calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)

	SharedSearches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mirage_shared_searches_total",
			Help: "Total number of searches served by joining an in-flight call for the same query",
		},
	)
)

// CacheHit records a lookup served from the cache.
func CacheHit() { CacheLookups.WithLabelValues("hit").Inc() }

// CacheMiss records a lookup that had to go to the completion service.
func CacheMiss() { CacheLookups.WithLabelValues("miss").Inc() }
