package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	db    Pinger
	queue Pinger
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(database, queue Pinger) *ProbeHandler {
	return &ProbeHandler{db: database, queue: queue}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness probes.
// Returns 200 OK if the database and the job queue are reachable.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "database unavailable",
		})
	}

	if err := h.queue.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "job queue unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
