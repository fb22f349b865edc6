// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/http"
	"github.com/guttosm/pack-assistant/internal/middleware"
	"github.com/rs/zerolog/log"
)

// App is the wired application: the HTTP router plus the components that
// need an orderly shutdown.
type App struct {
	Router   *gin.Engine
	Services *ServiceComponents
	Database *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) *App {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Log)

	// Initialize database components (MongoDB repositories and services)
	dbComponents := InitializeDatabase(cfg.Database)
	if dbComponents != nil && dbComponents.LoggingService != nil {
		middleware.InitAsyncLogger(dbComponents.LoggingService, middleware.DefaultAsyncLoggerConfig())
	}

	// Initialize business services
	serviceComponents := InitializeServices(cfg, dbComponents)

	// Initialize router components (handlers and configuration)
	routerComponents := InitializeRouter(serviceComponents, dbComponents, cfg)

	return &App{
		Router:   http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config),
		Services: serviceComponents,
		Database: dbComponents,
	}
}

// Shutdown saves pending drafts, drains the request log queue and closes the
// database connection. It runs after the HTTP server stopped accepting requests.
func (a *App) Shutdown(ctx context.Context) {
	a.Services.Shutdown(ctx)
	middleware.StopAsyncLogger()
	if err := a.Database.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close MongoDB connection")
	}
	log.Info().Msg("Application resources released")
}
