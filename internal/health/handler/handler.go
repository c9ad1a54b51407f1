package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wholesaleops/stockledger/internal/health"
)

type HealthHandler struct {
	monitor *health.Monitor
}

func NewHealthHandler(monitor *health.Monitor) *HealthHandler {
	return &HealthHandler{monitor: monitor}
}

// Check serves the last monitor snapshot. A degraded snapshot answers 503 so
// load balancers stop routing to a node that lost its data store.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	snap := h.monitor.Snapshot()

	status := fiber.StatusOK
	if snap.Status == health.StatusDegraded {
		status = fiber.StatusServiceUnavailable
	}
	if snap.LastCheck.IsZero() {
		// Monitor has not completed its first cycle yet.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":     "starting",
			"checked_at": time.Now(),
		})
	}
	return c.Status(status).JSON(snap)
}
