package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sanskruthi/fest-service/internal/observability"
)

const readinessTimeout = 2 * time.Second

// DependencyCheck pings one backing service.
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// DependencyStatus is the readiness result for one dependency.
type DependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthHandler serves the liveness and readiness probes and the admin
// metrics view.
type HealthHandler struct {
	serviceName string
	version     string
	startedAt   time.Time
	checks      []DependencyCheck
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, metrics *observability.Metrics, checks ...DependencyCheck) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
		metrics:     metrics,
		checks:      checks,
	}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "alive",
		"service":        h.serviceName,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// Ready handles GET /health/ready. Dependencies are pinged concurrently under
// one shared deadline.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	statuses, ready := h.probe(ctx)
	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": statuses,
			},
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": statuses})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]DependencyStatus, bool) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		ready    = true
		statuses = make(map[string]DependencyStatus, len(h.checks))
	)
	for _, check := range h.checks {
		wg.Add(1)
		go func(check DependencyCheck) {
			defer wg.Done()
			start := time.Now()
			err := check.Ping(ctx)
			st := DependencyStatus{Status: "ok", LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				st.Status = "down"
				st.Error = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			statuses[check.Name] = st
			ready = ready && err == nil
		}(check)
	}
	wg.Wait()
	return statuses, ready
}

// Metrics handles GET /admin/metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
