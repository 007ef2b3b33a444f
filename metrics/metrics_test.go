package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCacheLookupCounters(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))

	CacheHit()
	CacheHit()
	CacheMiss()

	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("hit")); got != hits+2 {
		t.Errorf("expected %v hits, got %v", hits+2, got)
	}
	if got := testutil.ToFloat64(CacheLookups.WithLabelValues("miss")); got != misses+1 {
		t.Errorf("expected %v misses, got %v", misses+1, got)
	}
}

func TestCompletionRequestsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(CompletionRequests.WithLabelValues(OutcomeOK))
	CompletionRequests.WithLabelValues(OutcomeOK).Inc()
	if got := testutil.ToFloat64(CompletionRequests.WithLabelValues(OutcomeOK)); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}

func TestCacheEntriesGauge(t *testing.T) {
	CacheEntries.Set(3)
	if got := testutil.ToFloat64(CacheEntries); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}
