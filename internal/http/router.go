package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/middleware"
	"github.com/guttosm/pack-assistant/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// loggingServiceKey holds the audit log writer in the gin context.
const loggingServiceKey = "logging_service"

// RouterConfig selects the middleware mounted on /api.
type RouterConfig struct {
	RateLimit         int
	RateWindow        time.Duration
	APIKeys           map[string]bool
	EnableAuth        bool
	EnableIdempotency bool
	RequestTimeout    time.Duration
	CORSOrigins       []string
	SwaggerUser       string
	SwaggerPass       string
	LoggingService    service.LoggingService
	// TokenValidator turns on operator bearer tokens. API keys are only
	// checked when it is nil.
	TokenValidator middleware.TokenValidator
}

// DefaultRouterConfig limits each client to 100 requests a minute.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{RateLimit: 100, RateWindow: time.Minute}
}

// NewRouter builds the engine: probes, metrics and docs at the root, the
// packing API under /api.
func NewRouter(handler *Handler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(cfg.LoggingService),
		middleware.ErrorHandler(),
	)

	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	mountSwagger(router, cfg.SwaggerUser, cfg.SwaggerPass)

	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(loggingServiceKey, cfg.LoggingService)
		c.Next()
	})
	api.Use(apiMiddleware(&cfg)...)

	if handler != nil {
		for _, group := range routeGroups(handler) {
			group.RegisterRoutes(api, &cfg)
		}
	}
	return router
}

func mountSwagger(router *gin.Engine, user, pass string) {
	docs := router.Group("/swagger")
	if user != "" && pass != "" {
		docs.Use(gin.BasicAuth(gin.Accounts{user: pass}))
	}
	docs.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// apiMiddleware orders authentication, rate limiting, the request deadline
// and idempotency. Operators are limited individually once their token is
// verified; without tokens clients are limited by IP before the API key check.
func apiMiddleware(cfg *RouterConfig) []gin.HandlerFunc {
	var chain []gin.HandlerFunc

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	}

	if cfg.TokenValidator != nil {
		chain = append(chain, middleware.JWTAuth(cfg.TokenValidator))
		if limiter != nil {
			chain = append(chain, limiter.OperatorRateLimit())
		}
	} else {
		if limiter != nil {
			chain = append(chain, limiter.RateLimit())
		}
		if cfg.EnableAuth {
			chain = append(chain, middleware.APIKeyAuth(cfg.APIKeys))
		}
	}

	if cfg.RequestTimeout > 0 {
		chain = append(chain, middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.EnableIdempotency {
		chain = append(chain, middleware.Idempotency(middleware.DefaultIdempotencyConfig()))
	}
	return chain
}
