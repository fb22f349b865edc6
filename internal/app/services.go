// Package app provides service initialization.
package app

import (
	"context"
	"time"

	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/repository"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Cache      *service.ShardedCache
	Resolver   *service.CapacityResolver
	Orders     *service.OrderServiceImpl
	Capacities *service.CapacitySettingsServiceImpl
	Drafts     *service.DraftService
	Packing    *service.PackingService
}

// InitializeServices initializes business logic services. Without database
// components every store is kept in memory.
func InitializeServices(cfg config.Config, db *DatabaseComponents) *ServiceComponents {
	var (
		ordersRepo   repository.OrdersRepositoryInterface
		settingsRepo repository.CapacitySettingsRepositoryInterface
		draftsRepo   repository.DraftsRepositoryInterface
	)
	if db != nil {
		ordersRepo = db.OrdersRepo
		settingsRepo = db.CapacitySettingsRepo
		draftsRepo = db.DraftsRepo
	} else {
		log.Warn().Msg("MongoDB disabled - orders, capacity settings and drafts are kept in memory")
		ordersRepo = repository.NewMemoryOrdersRepository()
		settingsRepo = repository.NewMemoryCapacitySettingsRepository()
		draftsRepo = repository.NewMemoryDraftsRepository()
	}

	components := &ServiceComponents{
		Orders: service.NewOrderService(ordersRepo),
		Drafts: service.NewDraftService(draftsRepo),
	}

	if cfg.Cache.Size > 0 {
		components.Cache = service.NewShardedCache(cfg.Cache.Size, cfg.Cache.TTL, cfg.Cache.Shards)
		components.Resolver = service.NewCapacityResolver(settingsRepo, components.Cache)
	} else {
		components.Resolver = service.NewCapacityResolver(settingsRepo, nil)
	}

	components.Capacities = service.NewCapacitySettingsService(settingsRepo, components.Resolver)
	if err := seedCapacityDefaults(components.Capacities, cfg.Packing.DefaultMaxPerBox); err != nil {
		log.Warn().Err(err).Msg("Failed to seed default capacity settings")
	}

	components.Packing = service.NewPackingService(
		components.Orders,
		components.Resolver,
		components.Drafts,
		cfg.Packing.DraftDebounce,
	)

	return components
}

// seedCapacityDefaults stores the configured CATALOG=MAX defaults when no
// capacity settings exist yet.
func seedCapacityDefaults(svc *service.CapacitySettingsServiceImpl, raw string) error {
	defaults, err := service.ParseCapacityDefaults(raw)
	if err != nil {
		return err
	}
	if len(defaults) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = svc.SeedDefaults(ctx, defaults)
	return err
}

// Shutdown flushes pending drafts and stops background workers.
func (s *ServiceComponents) Shutdown(ctx context.Context) {
	if s.Packing != nil {
		s.Packing.Shutdown(ctx)
	}
	if s.Cache != nil {
		s.Cache.Stop()
	}
}
