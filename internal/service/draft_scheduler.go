package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FlushFunc persists the current draft of one order.
type FlushFunc func(ctx context.Context, orderID string) error

// DraftScheduler batches rapid edits into one draft save per order. Every
// Schedule call restarts the order's quiet window; the save runs once the
// window passes without further edits. In-memory state never waits on it.
type DraftScheduler struct {
	delay        time.Duration
	flushTimeout time.Duration
	flush        FlushFunc

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// NewDraftScheduler creates a scheduler that calls flush after delay of quiet.
func NewDraftScheduler(delay time.Duration, flush FlushFunc) *DraftScheduler {
	if delay <= 0 {
		delay = 750 * time.Millisecond
	}
	return &DraftScheduler{
		delay:        delay,
		flushTimeout: 5 * time.Second,
		flush:        flush,
		timers:       make(map[string]*time.Timer),
	}
}

// Schedule marks the order dirty and (re)starts its quiet window.
func (s *DraftScheduler) Schedule(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[orderID]; ok {
		t.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.timers[orderID] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, orderID)
		s.wg.Add(1)
		s.mu.Unlock()

		defer s.wg.Done()
		s.run(orderID)
	})
	s.timers[orderID] = timer
}

// Flush saves the order now if a save is pending and cancels its timer.
// It reports whether a save was pending.
func (s *DraftScheduler) Flush(ctx context.Context, orderID string) (bool, error) {
	if !s.Cancel(orderID) {
		return false, nil
	}
	return true, s.flush(ctx, orderID)
}

// Cancel drops a pending save without running it.
func (s *DraftScheduler) Cancel(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[orderID]
	if !ok {
		return false
	}
	t.Stop()
	delete(s.timers, orderID)
	return true
}

// Pending returns the number of orders waiting for a save.
func (s *DraftScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop refuses new work, runs every pending save and waits for saves that
// are already in flight.
func (s *DraftScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopped = true
	pending := make([]string, 0, len(s.timers))
	for orderID, t := range s.timers {
		t.Stop()
		pending = append(pending, orderID)
	}
	s.timers = make(map[string]*time.Timer)
	s.mu.Unlock()

	for _, orderID := range pending {
		if err := s.flush(ctx, orderID); err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("Failed to flush draft on shutdown")
		}
	}
	s.wg.Wait()
}

func (s *DraftScheduler) run(orderID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()

	if err := s.flush(ctx, orderID); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Debounced draft save failed")
	}
}
