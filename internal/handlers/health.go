package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Pinger
	version string
	timeout time.Duration
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, version: version, timeout: 2 * time.Second}
}

// HealthCheck answers 503 when any dependency fails its ping.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	services := fiber.Map{}
	healthy := true
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			services[name] = "unavailable"
			healthy = false
			continue
		}
		services[name] = "connected"
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"version":  h.version,
		"services": services,
	})
}
