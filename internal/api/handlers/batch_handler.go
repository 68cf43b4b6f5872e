package handlers

import (
	"log/slog"

	"github.com/craftsites/autopost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type BatchHandler struct {
	fleet service.FleetService
}

func NewBatchHandler(fleet service.FleetService) *BatchHandler {
	return &BatchHandler{fleet: fleet}
}

// RunFleet executes a full fleet batch inline and returns its summary.
// Tenant failures are part of the 200 payload; only enumeration failure is a
// transport error.
func (h *BatchHandler) RunFleet(c *fiber.Ctx) error {
	run, err := h.fleet.RunFleet(c.Context())
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(run)
}
