package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/logger"
	"github.com/guttosm/pack-assistant/internal/metrics"
)

// ErrSessionNotFound is returned when no packing session is open for an order.
var ErrSessionNotFound = errors.New("packing session not found")

type operatorKey struct{}

// WithOperator stores the acting operator's id in the context.
func WithOperator(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operatorID)
}

// OperatorFromContext returns the operator id stored by WithOperator.
func OperatorFromContext(ctx context.Context) string {
	id, _ := ctx.Value(operatorKey{}).(string)
	return id
}

// sessionEntry guards one session. saveMu serializes draft writes so an
// older snapshot never lands after a newer one; it is taken before mu.
type sessionEntry struct {
	mu           sync.Mutex
	saveMu       sync.Mutex
	session      *PackingSession
	operatorID   string
	savedVersion int64
	closed       bool
}

// PackingService hosts one PackingSession per open order. Edits to a session
// are serialized and applied in memory before returning; draft persistence
// is debounced per order and never delays an edit.
type PackingService struct {
	orders    OrderService
	resolver  *CapacityResolver
	drafts    DraftStore
	scheduler *DraftScheduler

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewPackingService creates a session host. debounce is the quiet window
// before an edited session's draft is saved.
func NewPackingService(orders OrderService, resolver *CapacityResolver, drafts DraftStore, debounce time.Duration) *PackingService {
	s := &PackingService{
		orders:   orders,
		resolver: resolver,
		drafts:   drafts,
		sessions: make(map[string]*sessionEntry),
	}
	s.scheduler = NewDraftScheduler(debounce, s.flushPending)
	return s
}

// Open loads an order, splits its line items and restores any saved draft.
// Opening an order that already has a session returns that session.
func (s *PackingService) Open(ctx context.Context, orderID string) (SessionSnapshot, error) {
	if entry := s.lookup(orderID); entry != nil {
		return entry.snapshot(), nil
	}

	items, err := s.orders.GetLineItems(ctx, orderID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	items = packableItems(orderID, items)
	if len(items) == 0 {
		return SessionSnapshot{}, ErrNoLineItems
	}

	olog := logger.ForOrder(orderID, OperatorFromContext(ctx))
	units, err := NewItemSplitter(s.resolveCapacities(ctx, items)).Split(items)
	if err != nil {
		return SessionSnapshot{}, err
	}
	recordSplits(units)

	draftState, draftBoxes, loadErr := s.loadDraft(ctx, orderID)
	rec := ReconcileDraft(units, draftState, draftBoxes)
	metrics.RecordDraftReconcile(string(rec.Source), rec.Orphans)
	if rec.Orphans > 0 {
		olog.Info().
			Int("orphans", rec.Orphans).
			Msg("Dropped draft entries for units that no longer exist")
	}

	entry := &sessionEntry{
		session:    NewPackingSession(orderID, units, rec),
		operatorID: OperatorFromContext(ctx),
	}

	s.mu.Lock()
	if existing, ok := s.sessions[orderID]; ok {
		s.mu.Unlock()
		return existing.snapshot(), nil
	}
	s.sessions[orderID] = entry
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.SetActiveSessions(active)

	snap := entry.snapshot()
	if loadErr == nil && rec.Source == DraftSourceInitial {
		if err := s.save(ctx, entry); err != nil {
			olog.Warn().Err(err).Msg("Failed to persist initial draft")
		}
	}

	olog.Info().
		Int("units", len(units)).
		Int("boxes", len(snap.Boxes)).
		Str("source", string(rec.Source)).
		Msg("Packing session opened")
	return snap, nil
}

// Get returns the current state of an open session.
func (s *PackingService) Get(orderID string) (SessionSnapshot, error) {
	entry := s.lookup(orderID)
	if entry == nil {
		return SessionSnapshot{}, ErrSessionNotFound
	}
	return entry.snapshot(), nil
}

// Boxes returns the derived box list of an open session.
func (s *PackingService) Boxes(orderID string) ([]model.Box, error) {
	entry := s.lookup(orderID)
	if entry == nil {
		return nil, ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Boxes(), nil
}

// SetQuantity sets how many pieces of a unit are packed. Out-of-range values
// are clamped.
func (s *PackingService) SetQuantity(ctx context.Context, orderID, unitID string, qty int) (SessionSnapshot, error) {
	return s.edit(ctx, orderID, "set_quantity", func(p *PackingSession) (bool, error) {
		_, err := p.SetQuantity(unitID, qty)
		return err == nil, err
	})
}

// SetBoxNumber moves a unit into box n.
func (s *PackingService) SetBoxNumber(ctx context.Context, orderID, unitID string, n int) (SessionSnapshot, error) {
	return s.edit(ctx, orderID, "set_box_number", func(p *PackingSession) (bool, error) {
		before := p.Version()
		err := p.SetBoxNumber(unitID, n)
		return err == nil && p.Version() != before, err
	})
}

// Connect links two units into one box. The returned bool is false when the
// request was a self link, which changes nothing.
func (s *PackingService) Connect(ctx context.Context, orderID, from, to string) (model.Connection, bool, SessionSnapshot, error) {
	var (
		conn model.Connection
		ok   bool
	)
	snap, err := s.edit(ctx, orderID, "connect", func(p *PackingSession) (bool, error) {
		before := p.Version()
		var err error
		conn, ok, err = p.Connect(from, to)
		return err == nil && p.Version() != before, err
	})
	return conn, ok, snap, err
}

// Disconnect removes a connection. Unknown ids report false.
func (s *PackingService) Disconnect(ctx context.Context, orderID, connectionID string) (bool, SessionSnapshot, error) {
	var removed bool
	snap, err := s.edit(ctx, orderID, "disconnect", func(p *PackingSession) (bool, error) {
		removed = p.Disconnect(connectionID)
		return removed, nil
	})
	return removed, snap, err
}

// Reset drops every edit of the session and restores one unit per box.
func (s *PackingService) Reset(ctx context.Context, orderID string) (SessionSnapshot, error) {
	return s.edit(ctx, orderID, "reset", func(p *PackingSession) (bool, error) {
		p.Reset()
		return true, nil
	})
}

// Flush saves the session's draft now, cancelling any pending debounced save.
func (s *PackingService) Flush(ctx context.Context, orderID string) error {
	entry := s.lookup(orderID)
	if entry == nil {
		return ErrSessionNotFound
	}
	s.scheduler.Cancel(orderID)
	return s.save(ctx, entry)
}

// Close flushes the session's draft and releases the session. Edits are
// refused from the moment Close starts; the session reopens for edits when
// the final save fails.
func (s *PackingService) Close(ctx context.Context, orderID string) error {
	entry := s.lookup(orderID)
	if entry == nil {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	entry.closed = true
	entry.mu.Unlock()

	s.scheduler.Cancel(orderID)
	if err := s.save(ctx, entry); err != nil {
		entry.mu.Lock()
		entry.closed = false
		entry.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.sessions[orderID] == entry {
		delete(s.sessions, orderID)
	}
	active := len(s.sessions)
	s.mu.Unlock()
	metrics.SetActiveSessions(active)

	log.Info().Str("order_id", orderID).Msg("Packing session closed")
	return nil
}

// ActiveSessions returns the number of open sessions.
func (s *PackingService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PendingSaves returns the number of sessions waiting for a debounced save.
func (s *PackingService) PendingSaves() int {
	return s.scheduler.Pending()
}

// Shutdown saves every pending draft and stops accepting new saves.
func (s *PackingService) Shutdown(ctx context.Context) {
	s.scheduler.Stop(ctx)
}

func (s *PackingService) edit(ctx context.Context, orderID, kind string, fn func(*PackingSession) (bool, error)) (SessionSnapshot, error) {
	entry := s.lookup(orderID)
	if entry == nil {
		return SessionSnapshot{}, ErrSessionNotFound
	}

	entry.mu.Lock()
	if entry.closed {
		entry.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	start := time.Now()
	changed, err := fn(entry.session)
	if err != nil {
		entry.mu.Unlock()
		return SessionSnapshot{}, err
	}
	if changed {
		metrics.RecordBoxAssign(time.Since(start))
		if op := OperatorFromContext(ctx); op != "" {
			entry.operatorID = op
		}
	}
	snap := entry.session.Snapshot()
	entry.mu.Unlock()

	if changed {
		metrics.RecordSessionEdit(kind)
		s.scheduler.Schedule(orderID)
	}
	return snap, nil
}

func (s *PackingService) lookup(orderID string) *sessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[orderID]
}

func (s *PackingService) resolveCapacities(ctx context.Context, items []model.OrderLineItem) Capacities {
	if s.resolver == nil {
		return Capacities{}
	}
	catalogNumbers := make([]string, len(items))
	for i, item := range items {
		catalogNumbers[i] = item.CatalogNumber
	}
	return s.resolver.ResolveAll(ctx, catalogNumbers)
}

// loadDraft degrades to "no draft" on error. The error is still returned so
// the caller does not overwrite a draft it failed to read.
func (s *PackingService) loadDraft(ctx context.Context, orderID string) (model.PackingStateMap, []model.Box, error) {
	if s.drafts == nil {
		return nil, nil, ErrRepositoryNotConfigured
	}
	state, boxes, err := s.drafts.LoadDraft(ctx, orderID)
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("Draft load failed, starting from initial state")
		return nil, nil, err
	}
	return state, boxes, nil
}

// flushPending is the scheduler's save callback.
func (s *PackingService) flushPending(ctx context.Context, orderID string) error {
	entry := s.lookup(orderID)
	if entry == nil {
		return nil
	}
	return s.save(ctx, entry)
}

// save writes boxes before state; boxes win on reload. The snapshot is taken
// under saveMu, and a version that is already stored is not written again.
func (s *PackingService) save(ctx context.Context, entry *sessionEntry) error {
	if s.drafts == nil {
		return ErrRepositoryNotConfigured
	}
	entry.saveMu.Lock()
	defer entry.saveMu.Unlock()

	entry.mu.Lock()
	snap := entry.session.Snapshot()
	savedBy := entry.operatorID
	stored := snap.Version <= entry.savedVersion
	entry.mu.Unlock()
	if stored {
		return nil
	}

	err := errors.Join(
		s.drafts.SaveDraftBoxes(ctx, snap.OrderID, snap.Boxes, savedBy),
		s.drafts.SaveDraftState(ctx, snap.OrderID, snap.State, savedBy),
	)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	entry.savedVersion = snap.Version
	entry.mu.Unlock()
	log.Debug().Str("order_id", snap.OrderID).Int64("version", snap.Version).Msg("Draft saved")
	return nil
}

func (e *sessionEntry) snapshot() SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Snapshot()
}

// packableItems drops line items with a non-positive quantity.
func packableItems(orderID string, items []model.OrderLineItem) []model.OrderLineItem {
	out := make([]model.OrderLineItem, 0, len(items))
	for _, item := range items {
		if item.OrderedQuantity <= 0 {
			metrics.RecordItemSplit("invalid")
			log.Warn().
				Str("order_id", orderID).
				Str("item_id", item.ItemID).
				Int("ordered_quantity", item.OrderedQuantity).
				Msg("Skipping line item with non-positive quantity")
			continue
		}
		out = append(out, item)
	}
	return out
}

func recordSplits(units []model.PackableUnit) {
	for _, unit := range units {
		switch {
		case !unit.IsSplit:
			metrics.RecordItemSplit("whole")
		case unit.SplitIndex == 1:
			metrics.RecordItemSplit("split")
		}
	}
}
