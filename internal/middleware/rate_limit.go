package middleware

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/domain/dto"
)

const defaultLimiterShards = 16

// bucket is a token bucket. Credit is measured in time: each request costs
// window/rate and credit grows with elapsed time up to one full window.
type bucket struct {
	credit  time.Duration
	updated time.Time
}

type limiterShard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// RateLimiter throttles API calls per client. Each client owns a token bucket
// holding up to rate tokens that refills over window, so a packing screen can
// send a burst of edits and then settle to the steady rate.
type RateLimiter struct {
	shards []*limiterShard
	rate   int
	window time.Duration
	cost   time.Duration
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a limiter allowing rate requests per window.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return NewShardedRateLimiter(rate, window, defaultLimiterShards)
}

// NewShardedRateLimiter creates a limiter with a custom shard count.
func NewShardedRateLimiter(rate int, window time.Duration, shards int) *RateLimiter {
	if shards <= 0 {
		shards = defaultLimiterShards
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		shards: make([]*limiterShard, shards),
		rate:   rate,
		window: window,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	if rate > 0 {
		rl.cost = window / time.Duration(rate)
	}
	for i := range rl.shards {
		rl.shards[i] = &limiterShard{buckets: make(map[string]*bucket)}
	}

	go rl.sweep()
	return rl
}

func (rl *RateLimiter) shardFor(key string) *limiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return rl.shards[h.Sum32()%uint32(len(rl.shards))]
}

// take spends one token for key. When the bucket is empty it reports how long
// the client has to wait for the next token.
func (rl *RateLimiter) take(key string) (allowed bool, remaining int, wait time.Duration) {
	if rl.cost <= 0 {
		return false, 0, rl.window
	}

	shard := rl.shardFor(key)
	now := rl.now()
	capacity := rl.cost * time.Duration(rl.rate)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	b, ok := shard.buckets[key]
	if !ok {
		b = &bucket{credit: capacity, updated: now}
		shard.buckets[key] = b
	} else {
		b.credit += now.Sub(b.updated)
		if b.credit > capacity {
			b.credit = capacity
		}
		b.updated = now
	}

	if b.credit < rl.cost {
		return false, 0, rl.cost - b.credit
	}

	b.credit -= rl.cost
	return true, int(b.credit / rl.cost), 0
}

// RateLimit limits requests per client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context) string { return "ip:" + c.ClientIP() })
}

// OperatorRateLimit limits requests per authenticated operator, falling back
// to the client IP for anonymous calls.
func (rl *RateLimiter) OperatorRateLimit() gin.HandlerFunc {
	return rl.middleware(clientKey)
}

func (rl *RateLimiter) middleware(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, wait := rl.take(key(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewError(dto.ErrCodeRateLimit, dto.MsgRateLimitExceeded).WithRequestID(GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if operatorID := GetOperatorID(c); operatorID != "" {
		return "operator:" + operatorID
	}
	return "ip:" + c.ClientIP()
}

func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdle()
		case <-rl.stopCh:
			return
		}
	}
}

// dropIdle forgets buckets untouched for two windows; they would be full again.
func (rl *RateLimiter) dropIdle() {
	cutoff := rl.now().Add(-2 * rl.window)
	for _, shard := range rl.shards {
		shard.mu.Lock()
		for key, b := range shard.buckets {
			if b.updated.Before(cutoff) {
				delete(shard.buckets, key)
			}
		}
		shard.mu.Unlock()
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	total := 0
	for _, shard := range rl.shards {
		shard.mu.Lock()
		total += len(shard.buckets)
		shard.mu.Unlock()
	}
	return total
}
