package service

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/service/cache"
)

const defaultCacheShards = 16

// ShardedCache holds resolved max-per-box values in LRU shards picked by a
// hash of the catalog number, so sessions opening in parallel rarely share a
// lock. Entries also expire after a TTL so edits made by another instance
// are eventually seen.
type ShardedCache struct {
	shards   []*lruShard
	mask     uint32
	capacity int
	size     *atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// NewShardedCache creates a cache holding about capacity entries for ttl.
// numShards is rounded up to a power of two and defaults to 16.
func NewShardedCache(capacity int, ttl time.Duration, numShards int) *ShardedCache {
	if numShards <= 0 {
		numShards = defaultCacheShards
	}
	n := 1
	for n < numShards {
		n <<= 1
	}
	perShard := max(capacity/n, 1)

	sc := &ShardedCache{
		shards:   make([]*lruShard, n),
		mask:     uint32(n - 1),
		capacity: perShard * n,
		size:     new(atomic.Int64),
		stop:     make(chan struct{}),
	}
	for i := range sc.shards {
		sc.shards[i] = newLRUShard(perShard, ttl, sc.size)
	}
	go sc.sweepLoop(sweepInterval(ttl))
	return sc
}

// sweepInterval runs expiry sweeps a few times per TTL, at most once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return min(max(ttl/4, time.Second), time.Minute)
}

func (sc *ShardedCache) shard(key string) *lruShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sc.shards[h.Sum32()&sc.mask]
}

// Get returns the live entry for key.
func (sc *ShardedCache) Get(key string) (cache.Entry, bool) {
	entry, result := sc.shard(key).get(key)
	metrics.RecordCacheOperation("get", result)
	return entry, result == "hit"
}

// Set stores value for key, evicting the shard's least recently used entry
// when it is full.
func (sc *ShardedCache) Set(key string, value cache.Entry) {
	if sc.shard(key).set(key, value) {
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
	sc.publishSize()
}

// Invalidate drops key.
func (sc *ShardedCache) Invalidate(key string) {
	if sc.shard(key).remove(key) {
		metrics.RecordCacheOperation("invalidate", "success")
		sc.publishSize()
	}
}

// Clear empties every shard and resets the counters.
func (sc *ShardedCache) Clear() {
	for _, s := range sc.shards {
		s.reset()
	}
	metrics.RecordCacheOperation("clear", "success")
	sc.publishSize()
}

// Stop ends the expiry sweeps. It is safe to call more than once.
func (sc *ShardedCache) Stop() {
	sc.stopOnce.Do(func() { close(sc.stop) })
}

// Metrics sums the shard counters.
func (sc *ShardedCache) Metrics() cache.Metrics {
	m := cache.Metrics{Size: int(sc.size.Load()), Capacity: sc.capacity}
	for _, s := range sc.shards {
		m.Hits += s.hits.Load()
		m.Misses += s.misses.Load()
		m.Evictions += s.evictions.Load()
	}
	return m
}

func (sc *ShardedCache) publishSize() {
	metrics.UpdateCacheMetrics(int(sc.size.Load()), sc.capacity)
}

func (sc *ShardedCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for _, s := range sc.shards {
				s.dropExpired()
			}
			sc.publishSize()
		case <-sc.stop:
			return
		}
	}
}

// lruShard is one mutex-guarded LRU list with per-entry expiry.
type lruShard struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	size     *atomic.Int64

	mu    sync.Mutex
	index map[string]*list.Element
	lru   *list.List

	hits, misses, evictions atomic.Int64
}

type shardItem struct {
	key       string
	entry     cache.Entry
	expiresAt time.Time
}

func newLRUShard(capacity int, ttl time.Duration, size *atomic.Int64) *lruShard {
	return &lruShard{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		size:     size,
		index:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// get reports "hit", "miss" or "expired".
func (s *lruShard) get(key string) (cache.Entry, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[key]
	if !ok {
		s.misses.Add(1)
		return cache.Entry{}, "miss"
	}
	item := el.Value.(*shardItem)
	if !s.now().Before(item.expiresAt) {
		s.unlink(el)
		s.misses.Add(1)
		return cache.Entry{}, "expired"
	}
	s.lru.MoveToFront(el)
	s.hits.Add(1)
	return item.entry, "hit"
}

// set reports whether an entry was evicted to make room.
func (s *lruShard) set(key string, entry cache.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	if el, ok := s.index[key]; ok {
		item := el.Value.(*shardItem)
		item.entry, item.expiresAt = entry, expiresAt
		s.lru.MoveToFront(el)
		return false
	}

	s.index[key] = s.lru.PushFront(&shardItem{key: key, entry: entry, expiresAt: expiresAt})
	s.size.Add(1)
	if s.lru.Len() <= s.capacity {
		return false
	}
	s.unlink(s.lru.Back())
	s.evictions.Add(1)
	return true
}

func (s *lruShard) remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.index[key]
	if ok {
		s.unlink(el)
	}
	return ok
}

func (s *lruShard) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size.Add(-int64(s.lru.Len()))
	s.index = make(map[string]*list.Element)
	s.lru.Init()
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
}

// dropExpired walks from the least recently used end and removes every
// expired entry.
func (s *lruShard) dropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for el := s.lru.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*shardItem).expiresAt) {
			s.unlink(el)
		}
		el = prev
	}
}

func (s *lruShard) unlink(el *list.Element) {
	delete(s.index, el.Value.(*shardItem).key)
	s.lru.Remove(el)
	s.size.Add(-1)
}
