package analysis

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache keeps analysis results keyed by source digest
type resultCache struct {
	entries *lru.Cache[string, *analysisResult]
	stats   cacheStats
}

// cacheStats tracks cache performance metrics
type cacheStats struct {
	Hits   atomic.Int64
	Misses atomic.Int64
}

func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		size = DefaultOptions().CacheSize
	}
	entries, err := lru.New[string, *analysisResult](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func (c *resultCache) Get(key string) (*analysisResult, bool) {
	result, ok := c.entries.Get(key)
	if ok {
		c.stats.Hits.Add(1)
	} else {
		c.stats.Misses.Add(1)
	}
	return result, ok
}

func (c *resultCache) Add(key string, result *analysisResult) {
	c.entries.Add(key, result)
}

// Len returns the number of cached results
func (c *resultCache) Len() int {
	return c.entries.Len()
}

// Stats returns hit and miss counts
func (c *resultCache) Stats() (hits, misses int64) {
	return c.stats.Hits.Load(), c.stats.Misses.Load()
}

// CacheStats reports the oracle's cache hit and miss counts
func (o *TreeSitterOracle) CacheStats() (hits, misses int64) {
	return o.cache.Stats()
}
