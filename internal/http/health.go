package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/pack-assistant/internal/circuitbreaker"
)

const defaultCheckTimeout = 2 * time.Second

// HealthChecker probes one dependency for the readiness endpoint.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

// Check calls f.
func (f HealthCheckerFunc) Check(ctx context.Context) error {
	return f(ctx)
}

// SessionStats reports the packing session host's load.
type SessionStats interface {
	ActiveSessions() int
	PendingSaves() int
}

// HealthHandler serves /healthz and /readyz.
type HealthHandler struct {
	checkers     map[string]HealthChecker
	breakers     map[string]*circuitbreaker.CircuitBreaker
	sessions     SessionStats
	checkTimeout time.Duration
}

// NewHealthHandler creates a HealthHandler with no dependencies registered.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers:     make(map[string]HealthChecker),
		breakers:     make(map[string]*circuitbreaker.CircuitBreaker),
		checkTimeout: defaultCheckTimeout,
	}
}

// RegisterCircuitBreaker reports cb under name. An open or half-open breaker
// makes the service not ready.
func (h *HealthHandler) RegisterCircuitBreaker(name string, cb *circuitbreaker.CircuitBreaker) {
	if cb != nil {
		h.breakers[name] = cb
	}
}

// RegisterChecker adds a dependency probe.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// SetSessionStats adds packing session load to the readiness response.
func (h *HealthHandler) SetSessionStats(stats SessionStats) {
	h.sessions = stats
}

// Register mounts the probes on router.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Description Returns OK while the process is serving requests. Metrics are exposed separately on /metrics.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles the readiness probe endpoint.
// @Summary     Readiness probe
// @Description Probes MongoDB, reports every store circuit breaker and the packing session load. Returns 503 when a probe fails or a breaker is not closed.
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]interface{} "Service is ready"
// @Failure     503 {object} map[string]interface{} "Service is not ready"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := h.runChecks(c.Request.Context())
	ready := true
	for _, result := range checks {
		if result != "ok" {
			ready = false
		}
	}

	circuits := make(map[string]circuitbreaker.Stats, len(h.breakers))
	for name, cb := range h.breakers {
		stats := cb.GetStats()
		circuits[name] = stats
		checks[name+"_circuit"] = stats.State
		ready = ready && stats.IsHealthy
	}

	if len(checks) == 0 {
		checks["service"] = "ok"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if len(circuits) > 0 {
		body["circuits"] = circuits
	}
	if h.sessions != nil {
		body["packing"] = gin.H{
			"active_sessions": h.sessions.ActiveSessions(),
			"pending_saves":   h.sessions.PendingSaves(),
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

// runChecks probes every dependency in parallel, each under its own timeout.
func (h *HealthHandler) runChecks(ctx context.Context) map[string]string {
	results := make(map[string]string, len(h.checkers)+len(h.breakers))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, checker := range h.checkers {
		wg.Add(1)
		go func(name string, checker HealthChecker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
			defer cancel()

			result := "ok"
			if err := checker.Check(checkCtx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}
	wg.Wait()
	return results
}
