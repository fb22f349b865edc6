package repository

import (
	"context"
	"errors"

	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// guarded runs fn through the breaker and returns its result.
func guarded[T any](ctx context.Context, cb *circuitbreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = fn()
		return cbErr
	})
	return result, err
}

// OrdersRepositoryWithCircuitBreaker wraps an orders repository with circuit breaker protection.
type OrdersRepositoryWithCircuitBreaker struct {
	repo           OrdersRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewOrdersRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewOrdersRepositoryWithCircuitBreaker(repo OrdersRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *OrdersRepositoryWithCircuitBreaker {
	return &OrdersRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Get returns an order with circuit breaker protection.
func (r *OrdersRepositoryWithCircuitBreaker) Get(ctx context.Context, orderID string) (*model.Order, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.Order, error) {
		return r.repo.Get(ctx, orderID)
	})
}

// Upsert stores an order with circuit breaker protection.
func (r *OrdersRepositoryWithCircuitBreaker) Upsert(ctx context.Context, order *model.Order) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Upsert(ctx, order)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *OrdersRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// CapacitySettingsRepositoryWithCircuitBreaker wraps a capacity settings repository.
// Errors, including an open circuit, are returned so the resolver can fall
// back to unbounded capacity without caching the fallback.
type CapacitySettingsRepositoryWithCircuitBreaker struct {
	repo           CapacitySettingsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewCapacitySettingsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewCapacitySettingsRepositoryWithCircuitBreaker(repo CapacitySettingsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *CapacitySettingsRepositoryWithCircuitBreaker {
	return &CapacitySettingsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// GetAll returns every setting with circuit breaker protection.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]model.MaxPerBoxSetting, error) {
		return r.repo.GetAll(ctx)
	})
}

// GetByCatalogNumber returns one setting with circuit breaker protection.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.MaxPerBoxSetting, error) {
		return r.repo.GetByCatalogNumber(ctx, catalogNumber)
	})
}

// GetByCatalogNumbers resolves a batch with circuit breaker protection.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) GetByCatalogNumbers(ctx context.Context, catalogNumbers []string) ([]model.MaxPerBoxSetting, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]model.MaxPerBoxSetting, error) {
		return r.repo.GetByCatalogNumbers(ctx, catalogNumbers)
	})
}

// Upsert stores a setting with circuit breaker protection.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) Upsert(ctx context.Context, setting *model.MaxPerBoxSetting) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Upsert(ctx, setting)
	})
}

// Delete removes a setting with circuit breaker protection.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) Delete(ctx context.Context, catalogNumber string) (bool, error) {
	return guarded(ctx, r.circuitBreaker, func() (bool, error) {
		return r.repo.Delete(ctx, catalogNumber)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *CapacitySettingsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// DraftsRepositoryWithCircuitBreaker wraps a drafts repository with circuit breaker protection.
type DraftsRepositoryWithCircuitBreaker struct {
	repo           DraftsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewDraftsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewDraftsRepositoryWithCircuitBreaker(repo DraftsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *DraftsRepositoryWithCircuitBreaker {
	return &DraftsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Get loads a draft with circuit breaker protection.
func (r *DraftsRepositoryWithCircuitBreaker) Get(ctx context.Context, orderID string) (*model.Draft, error) {
	return guarded(ctx, r.circuitBreaker, func() (*model.Draft, error) {
		return r.repo.Get(ctx, orderID)
	})
}

// SaveState stores the packing-state map with circuit breaker protection.
func (r *DraftsRepositoryWithCircuitBreaker) SaveState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.SaveState(ctx, orderID, state, savedBy)
	})
}

// SaveBoxes stores the box list with circuit breaker protection.
func (r *DraftsRepositoryWithCircuitBreaker) SaveBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.SaveBoxes(ctx, orderID, boxes, savedBy)
	})
}

// Delete removes a draft with circuit breaker protection.
func (r *DraftsRepositoryWithCircuitBreaker) Delete(ctx context.Context, orderID string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Delete(ctx, orderID)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *DraftsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// LogsRepositoryWithCircuitBreaker wraps a logs repository with circuit breaker protection.
type LogsRepositoryWithCircuitBreaker struct {
	repo           LogsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Create stores a single log entry. An open circuit drops the entry silently.
func (r *LogsRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, entry)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// CreateMany stores multiple log entries. An open circuit drops them silently.
func (r *LogsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, entries)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query retrieves log entries with circuit breaker protection.
func (r *LogsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts LogQueryOptions) ([]*LogEntryDocument, error) {
	return guarded(ctx, r.circuitBreaker, func() ([]*LogEntryDocument, error) {
		return r.repo.Query(ctx, opts)
	})
}

// Count returns the count of log entries with circuit breaker protection.
func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts LogQueryOptions) (int64, error) {
	return guarded(ctx, r.circuitBreaker, func() (int64, error) {
		return r.repo.Count(ctx, opts)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *LogsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
