// Package cache defines the capacity cache contract used by the resolver.
package cache

// Entry is a cached capacity lookup. Bounded is false when the catalog
// number has no max-per-box setting, so misses are cached as well.
type Entry struct {
	MaxQuantity int
	Bounded     bool
}

// Cache defines the interface for cache operations.
type Cache interface {
	Get(key string) (Entry, bool)
	Set(key string, value Entry)
	Invalidate(key string)
	Clear()
	Stop()
}

// Metrics provides cache performance metrics.
type Metrics struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// CacheWithMetrics extends Cache with metrics reporting.
type CacheWithMetrics interface {
	Cache
	Metrics() Metrics
}
