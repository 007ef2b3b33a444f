package engine

import (
	"sync"

	"github.com/jellydator/ttlcache/v3"

	mirage "github.com/Paranoid-AF/mirage"
	"github.com/Paranoid-AF/mirage/metrics"
)

// Cache maps exact query strings to validated results for the lifetime of
// the process. Entries never expire and are never evicted.
//
// The cache owns what it stores: values are cloned on the way in and on the
// way out, so callers may mutate what they receive.
type Cache struct {
	items *ttlcache.Cache[string, *mirage.SearchResults]

	// mu serializes stores so each new key is counted once in
	// metrics.CacheEntries, which totals every cache in the process.
	mu sync.Mutex
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	c := ttlcache.New[string, *mirage.SearchResults](
		ttlcache.WithDisableTouchOnHit[string, *mirage.SearchResults](),
	)
	return &Cache{items: c}
}

// Lookup returns a copy of the result stored for query.
func (c *Cache) Lookup(query string) (*mirage.SearchResults, bool) {
	item := c.items.Get(query)
	if item == nil {
		return nil, false
	}
	return item.Value().Clone(), true
}

// Store records result for query, replacing any previous entry.
func (c *Cache) Store(query string, result *mirage.SearchResults) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.items.Has(query) {
		metrics.CacheEntries.Inc()
	}
	c.items.Set(query, result.Clone(), ttlcache.NoTTL)
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	return c.items.Len()
}
