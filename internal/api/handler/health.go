package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// ReadinessChecker reports whether a backing dependency can serve traffic.
type ReadinessChecker func(ctx context.Context) error

type HealthHandler struct {
	checkDB ReadinessChecker
}

func NewHealthHandler(checkDB ReadinessChecker) *HealthHandler {
	return &HealthHandler{checkDB: checkDB}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.checkDB != nil {
		if err := h.checkDB(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status: "unavailable",
			})
		}
	}
	return c.JSON(HealthResponse{
		Status: "ready",
	})
}
