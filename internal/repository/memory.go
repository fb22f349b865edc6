package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// MemoryOrdersRepository keeps orders in process memory. It backs the
// service when MongoDB is disabled and is used in tests.
type MemoryOrdersRepository struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

// NewMemoryOrdersRepository returns an empty in-memory order store.
func NewMemoryOrdersRepository() *MemoryOrdersRepository {
	return &MemoryOrdersRepository{orders: make(map[string]model.Order)}
}

// Get returns a copy of the order, or nil when it does not exist.
func (r *MemoryOrdersRepository) Get(_ context.Context, orderID string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	order.Items = append([]model.OrderLineItem(nil), order.Items...)
	return &order, nil
}

// Upsert stores a copy of the order.
func (r *MemoryOrdersRepository) Upsert(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	order.UpdatedAt = now
	if existing, ok := r.orders[order.ID]; ok {
		order.CreatedAt = existing.CreatedAt
	} else {
		order.CreatedAt = now
	}

	stored := *order
	stored.Items = append([]model.OrderLineItem(nil), order.Items...)
	r.orders[order.ID] = stored
	return nil
}

// MemoryCapacitySettingsRepository keeps max-per-box settings in memory.
type MemoryCapacitySettingsRepository struct {
	mu       sync.RWMutex
	settings map[string]model.MaxPerBoxSetting
}

// NewMemoryCapacitySettingsRepository returns an empty in-memory settings store.
func NewMemoryCapacitySettingsRepository() *MemoryCapacitySettingsRepository {
	return &MemoryCapacitySettingsRepository{settings: make(map[string]model.MaxPerBoxSetting)}
}

// GetAll returns every setting ordered by catalog number.
func (r *MemoryCapacitySettingsRepository) GetAll(_ context.Context) ([]model.MaxPerBoxSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.MaxPerBoxSetting, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, s)
	}
	sortSettings(out)
	return out, nil
}

// GetByCatalogNumber returns a single setting, or nil when none is stored.
func (r *MemoryCapacitySettingsRepository) GetByCatalogNumber(_ context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.settings[catalogNumber]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// GetByCatalogNumbers returns the stored settings among the given catalog numbers.
func (r *MemoryCapacitySettingsRepository) GetByCatalogNumbers(_ context.Context, catalogNumbers []string) ([]model.MaxPerBoxSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.MaxPerBoxSetting, 0, len(catalogNumbers))
	seen := make(map[string]struct{}, len(catalogNumbers))
	for _, cn := range catalogNumbers {
		if _, dup := seen[cn]; dup {
			continue
		}
		seen[cn] = struct{}{}
		if s, ok := r.settings[cn]; ok {
			out = append(out, s)
		}
	}
	sortSettings(out)
	return out, nil
}

// Upsert creates or replaces a setting.
func (r *MemoryCapacitySettingsRepository) Upsert(_ context.Context, setting *model.MaxPerBoxSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}
	r.settings[setting.CatalogNumber] = *setting
	return nil
}

// Delete removes a setting and reports whether one existed.
func (r *MemoryCapacitySettingsRepository) Delete(_ context.Context, catalogNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.settings[catalogNumber]
	delete(r.settings, catalogNumber)
	return ok, nil
}

func sortSettings(settings []model.MaxPerBoxSetting) {
	sort.Slice(settings, func(i, j int) bool {
		return strings.Compare(settings[i].CatalogNumber, settings[j].CatalogNumber) < 0
	})
}

// MemoryDraftsRepository keeps packing drafts in memory.
type MemoryDraftsRepository struct {
	mu     sync.RWMutex
	drafts map[string]model.Draft
}

// NewMemoryDraftsRepository returns an empty in-memory draft store.
func NewMemoryDraftsRepository() *MemoryDraftsRepository {
	return &MemoryDraftsRepository{drafts: make(map[string]model.Draft)}
}

// Get returns a copy of the order's draft, or nil when none was saved.
func (r *MemoryDraftsRepository) Get(_ context.Context, orderID string) (*model.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[orderID]
	if !ok {
		return nil, nil
	}
	d.PackingState = d.PackingState.Clone()
	d.Boxes = copyBoxes(d.Boxes)
	return &d, nil
}

// SaveState stores a copy of the packing-state map.
func (r *MemoryDraftsRepository) SaveState(_ context.Context, orderID string, state model.PackingStateMap, savedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.drafts[orderID]
	d.OrderID = orderID
	d.PackingState = state.Clone()
	d.StateSavedAt = time.Now().UTC()
	d.UpdatedBy = savedBy
	r.drafts[orderID] = d
	return nil
}

// SaveBoxes stores a copy of the box list.
func (r *MemoryDraftsRepository) SaveBoxes(_ context.Context, orderID string, boxes []model.Box, savedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.drafts[orderID]
	d.OrderID = orderID
	d.Boxes = copyBoxes(boxes)
	d.BoxesSavedAt = time.Now().UTC()
	d.UpdatedBy = savedBy
	r.drafts[orderID] = d
	return nil
}

// Delete removes the order's draft.
func (r *MemoryDraftsRepository) Delete(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.drafts, orderID)
	return nil
}

func copyBoxes(boxes []model.Box) []model.Box {
	if boxes == nil {
		return nil
	}
	out := make([]model.Box, len(boxes))
	for i, b := range boxes {
		out[i] = b
		out[i].Items = append([]model.BoxItem(nil), b.Items...)
		out[i].Members = append([]string(nil), b.Members...)
	}
	return out
}

var (
	_ OrdersRepositoryInterface           = (*MemoryOrdersRepository)(nil)
	_ CapacitySettingsRepositoryInterface = (*MemoryCapacitySettingsRepository)(nil)
	_ DraftsRepositoryInterface           = (*MemoryDraftsRepository)(nil)
)
