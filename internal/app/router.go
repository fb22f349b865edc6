package app

import (
	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/http"
	"github.com/guttosm/pack-assistant/internal/service"
)

// RouterComponents holds what http.NewRouter needs.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the handlers and router settings. dbComponents is
// nil when the service runs on in-memory stores.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg config.Config) *RouterComponents {
	return &RouterComponents{
		Handler:       http.NewHandler(services.Orders, services.Capacities, services.Packing, services.Drafts),
		HealthHandler: newHealthHandler(services, dbComponents),
		Config:        routerConfig(cfg, dbComponents),
	}
}

func newHealthHandler(services *ServiceComponents, dbComponents *DatabaseComponents) *http.HealthHandler {
	health := http.NewHealthHandler()
	health.SetSessionStats(services.Packing)

	if dbComponents == nil {
		return health
	}
	for name, cb := range dbComponents.CircuitBreakers() {
		health.RegisterCircuitBreaker(name, cb)
	}
	if dbComponents.DB != nil {
		health.RegisterChecker("mongodb", http.HealthCheckerFunc(dbComponents.DB.HealthCheck))
	}
	return health
}

func routerConfig(cfg config.Config, dbComponents *DatabaseComponents) http.RouterConfig {
	rc := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		EnableAuth:        cfg.Auth.Enabled,
		APIKeys:           cfg.Auth.APIKeys,
		EnableIdempotency: true,
		RequestTimeout:    cfg.Server.RequestTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
	}
	if dbComponents != nil {
		rc.LoggingService = dbComponents.LoggingService
	}
	// Operator tokens take precedence over API keys when both are configured.
	if cfg.Auth.JWTSecretKey != "" {
		rc.TokenValidator = service.NewOperatorTokenValidator(cfg.Auth.JWTSecretKey)
	}
	return rc
}
