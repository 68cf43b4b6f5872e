package handlers

import (
	"errors"
	"log/slog"

	"github.com/craftsites/autopost/internal/apperr"
	"github.com/craftsites/autopost/internal/models"
	"github.com/craftsites/autopost/internal/repository"
	"github.com/craftsites/autopost/internal/service"
	"github.com/gofiber/fiber/v2"
)

type TenantHandler struct {
	tenants  repository.TenantRepository
	pipeline service.PipelineService
	cache    service.CacheService
}

func NewTenantHandler(tenants repository.TenantRepository, pipeline service.PipelineService, cache service.CacheService) *TenantHandler {
	return &TenantHandler{tenants: tenants, pipeline: pipeline, cache: cache}
}

// RunTenant triggers one tenant's pipeline. A pipeline failure is reported
// data, not a transport error.
func (h *TenantHandler) RunTenant(c *fiber.Ctx) error {
	tenant, err := h.tenants.Lookup(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "unknown tenant",
			})
		}
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	outcome := models.TenantOutcome{Tenant: tenant.Domain}
	postID, err := h.pipeline.RunTenant(c.Context(), tenant)
	if err != nil {
		outcome.Error = err.Error()
	} else {
		outcome.Success = true
		outcome.PostID = postID
	}

	return c.Status(fiber.StatusOK).JSON(outcome)
}

func (h *TenantHandler) InvalidateCache(c *fiber.Ctx) error {
	if err := h.cache.InvalidatePage(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "cache invalidated",
	})
}
