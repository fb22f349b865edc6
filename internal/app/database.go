// Package app provides database initialization and setup.
package app

import (
	"context"

	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/repository"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                     *repository.MongoDB
	OrdersRepo             repository.OrdersRepositoryInterface
	CapacitySettingsRepo   repository.CapacitySettingsRepositoryInterface
	DraftsRepo             repository.DraftsRepositoryInterface
	LoggingService         service.LoggingService
	OrdersCircuitBreaker   *circuitbreaker.CircuitBreaker
	SettingsCircuitBreaker *circuitbreaker.CircuitBreaker
	DraftsCircuitBreaker   *circuitbreaker.CircuitBreaker
	LogsCircuitBreaker     *circuitbreaker.CircuitBreaker
}

// InitializeDatabase initializes MongoDB connection and creates required repositories and services.
// Returns nil if database is disabled or connection fails.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	pool := repository.DefaultPoolOptions()
	if cfg.MaxPoolSize > 0 {
		pool.MaxSize = cfg.MaxPoolSize
	}
	db, err := repository.NewMongoDBWithOptions(cfg.URI, cfg.DatabaseName, pool)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing with in-memory storage")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	if err := db.SetLogsTTL(context.Background(), cfg.LogsTTL); err != nil {
		log.Warn().Err(err).Dur("ttl", cfg.LogsTTL).Msg("Failed to set logs TTL index")
	}

	ordersCB := newCircuitBreaker(cfg, "mongodb-orders")
	settingsCB := newCircuitBreaker(cfg, "mongodb-capacity-settings")
	draftsCB := newCircuitBreaker(cfg, "mongodb-drafts")
	logsCB := newCircuitBreaker(cfg, "mongodb-logs")

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)

	return &DatabaseComponents{
		DB:                     db,
		OrdersRepo:             repository.NewOrdersRepositoryWithCircuitBreaker(repository.NewOrdersRepository(db), ordersCB),
		CapacitySettingsRepo:   repository.NewCapacitySettingsRepositoryWithCircuitBreaker(repository.NewCapacitySettingsRepository(db), settingsCB),
		DraftsRepo:             repository.NewDraftsRepositoryWithCircuitBreaker(repository.NewDraftsRepository(db), draftsCB),
		LoggingService:         service.NewLoggingService(logsRepo),
		OrdersCircuitBreaker:   ordersCB,
		SettingsCircuitBreaker: settingsCB,
		DraftsCircuitBreaker:   draftsCB,
		LogsCircuitBreaker:     logsCB,
	}
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             name,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.RecordCircuitTransition(name, to.String(), int(to))
		},
	})
}

// CircuitBreakers returns the breakers keyed by the name reported on /readyz.
func (d *DatabaseComponents) CircuitBreakers() map[string]*circuitbreaker.CircuitBreaker {
	if d == nil {
		return nil
	}
	return map[string]*circuitbreaker.CircuitBreaker{
		"mongodb_orders":            d.OrdersCircuitBreaker,
		"mongodb_capacity_settings": d.SettingsCircuitBreaker,
		"mongodb_drafts":            d.DraftsCircuitBreaker,
		"mongodb_logs":              d.LogsCircuitBreaker,
	}
}

// Close disconnects from MongoDB.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close(ctx)
}
