package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Verdenroz/buff-ai/internal/workers"
	"github.com/Verdenroz/buff-ai/pkg/logger"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Check probes one dependency
type Check func(ctx context.Context) error

// WorkerStatus reports background worker history. *workers.Scheduler implements it.
type WorkerStatus interface {
	Health() map[string]workers.Health
}

// Handler provides health check endpoints
type Handler struct {
	checks      map[string]Check
	workers     WorkerStatus
	startTime   time.Time
	serviceName string
	version     string
	log         *logger.Logger
}

// New creates a health handler. workerStatus may be nil.
func New(serviceName, version string, checks map[string]Check, workerStatus WorkerStatus) *Handler {
	return &Handler{
		checks:      checks,
		workers:     workerStatus,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
		log:         logger.Get().With("component", "health"),
	}
}

// Status represents the overall health status
type Status struct {
	Status    string                     `json:"status"`
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Workers   map[string]workers.Health  `json:"workers,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Register mounts /health, /ready and /live
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.HandleHealth)
	e.GET("/ready", h.HandleReadiness)
	e.GET("/live", h.HandleLiveness)
}

// HandleLiveness returns 200 while the process is serving
func (h *Handler) HandleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness returns 503 unless every dependency answers
func (h *Handler) HandleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)
	status := h.status(checks)

	code := http.StatusOK
	if healthy < len(checks) {
		status.Status = StatusUnhealthy
		code = http.StatusServiceUnavailable
		h.log.Warnw("readiness check failed", "checks", checks)
	}
	return c.JSON(code, status)
}

// HandleHealth reports every check plus worker history. A partial outage
// is "degraded" and still answers 200.
func (h *Handler) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)
	status := h.status(checks)
	if h.workers != nil {
		status.Workers = h.workers.Health()
	}

	code := http.StatusOK
	switch {
	case len(checks) > 0 && healthy == 0:
		status.Status = StatusUnhealthy
		code = http.StatusServiceUnavailable
	case healthy < len(checks):
		status.Status = StatusDegraded
	}
	return c.JSON(code, status)
}

func (h *Handler) status(checks map[string]ComponentHealth) Status {
	return Status{
		Status:    StatusHealthy,
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

func (h *Handler) runChecks(ctx context.Context) (map[string]ComponentHealth, int) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]ComponentHealth, len(names))
	healthy := 0
	for _, name := range names {
		start := time.Now()
		err := h.checks[name](ctx)
		elapsed := time.Since(start)

		if err != nil {
			h.log.Errorw("health check failed", "check", name, "error", err, "elapsed", elapsed)
			out[name] = ComponentHealth{Status: StatusUnhealthy, ResponseTime: elapsed.String(), Error: err.Error()}
			continue
		}
		healthy++
		out[name] = ComponentHealth{Status: StatusHealthy, ResponseTime: elapsed.String()}
	}
	return out, healthy
}
