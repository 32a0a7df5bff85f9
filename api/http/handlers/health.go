package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/pkg/health"
	"github.com/artem13815/docqa/pkg/logger"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc health.ReadinessUseCase
	log *slog.Logger
}

func NewHealthHandler(svc health.ReadinessUseCase, log *slog.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, log: log}
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready: readiness check with DB ping.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		h.log.WarnContext(ctx, "readiness check failed", logger.Err(err))
		resp := fiber.Map{"status": "not_ready"}
		var ce *health.CheckError
		if errors.As(err, &ce) {
			resp["dependency"] = ce.Checker
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready"})
}
