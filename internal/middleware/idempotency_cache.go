package middleware

import (
	"sync"
	"time"
)

// replay is a completed response kept for an idempotency key.
type replay struct {
	status      int
	contentType string
	body        []byte
}

// idempotencyEntry is pending while the first request for a key is running.
type idempotencyEntry struct {
	response *replay
	storedAt time.Time
}

// idempotencyStore tracks keys in flight and the responses of finished ones.
type idempotencyStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*idempotencyEntry
}

func newIdempotencyStore(ttl time.Duration) *idempotencyStore {
	s := &idempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*idempotencyEntry),
	}
	go s.sweepEvery(time.Minute)
	return s
}

// claim reserves key for the caller. It returns the stored response when the
// key already finished, or busy when another request holds it.
func (s *idempotencyStore) claim(key string) (stored *replay, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	switch {
	case !ok, s.expired(entry):
		s.entries[key] = &idempotencyEntry{storedAt: s.now()}
		return nil, false
	case entry.response == nil:
		return nil, true
	default:
		return entry.response, false
	}
}

// complete keeps resp for key, or releases the key when resp is nil.
func (s *idempotencyStore) complete(key string, resp *replay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resp == nil {
		delete(s.entries, key)
		return
	}
	s.entries[key] = &idempotencyEntry{response: resp, storedAt: s.now()}
}

func (s *idempotencyStore) expired(entry *idempotencyEntry) bool {
	return s.now().Sub(entry.storedAt) > s.ttl
}

func (s *idempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, key)
		}
	}
}

func (s *idempotencyStore) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		s.sweep()
	}
}

func (s *idempotencyStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
