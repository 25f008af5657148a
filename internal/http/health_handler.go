package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Cache     string    `json:"cache"`
}

// HealthIndexAction handles the health check endpoint
func (h *Handlers) HealthIndexAction(c *fiber.Ctx) error {
	return c.JSON(HealthStatus{
		Status:    "ok",
		Timestamp: h.now(),
		Cache:     h.CacheBackend,
	})
}
