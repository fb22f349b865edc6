package repository

import (
	"context"

	"github.com/guttosm/pack-assistant/internal/domain/model"
)

// OrdersRepositoryInterface defines order storage. Get returns nil, nil for unknown orders.
type OrdersRepositoryInterface interface {
	Get(ctx context.Context, orderID string) (*model.Order, error)
	Upsert(ctx context.Context, order *model.Order) error
}

// CapacitySettingsRepositoryInterface defines max-per-box settings storage.
type CapacitySettingsRepositoryInterface interface {
	GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error)
	GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error)
	GetByCatalogNumbers(ctx context.Context, catalogNumbers []string) ([]model.MaxPerBoxSetting, error)
	Upsert(ctx context.Context, setting *model.MaxPerBoxSetting) error
	Delete(ctx context.Context, catalogNumber string) (bool, error)
}

// DraftsRepositoryInterface defines packing draft storage. Get returns nil, nil when no draft exists.
type DraftsRepositoryInterface interface {
	Get(ctx context.Context, orderID string) (*model.Draft, error)
	SaveState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error
	SaveBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error
	Delete(ctx context.Context, orderID string) error
}

// LogsRepositoryInterface defines the interface for logs repository operations.
type LogsRepositoryInterface interface {
	Create(ctx context.Context, entry *LogEntryDocument) error
	CreateMany(ctx context.Context, entries []*LogEntryDocument) error
	Query(ctx context.Context, opts LogQueryOptions) ([]*LogEntryDocument, error)
	Count(ctx context.Context, opts LogQueryOptions) (int64, error)
}

var (
	_ OrdersRepositoryInterface           = (*OrdersRepository)(nil)
	_ CapacitySettingsRepositoryInterface = (*CapacitySettingsRepository)(nil)
	_ DraftsRepositoryInterface           = (*DraftsRepository)(nil)
	_ LogsRepositoryInterface             = (*LogsRepository)(nil)
)
