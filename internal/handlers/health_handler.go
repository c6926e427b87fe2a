package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, storeStatus := "ok", "ok"
	code := fiber.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "store health check failed", "action", "health", "error", err)
		status, storeStatus = "degraded", "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
	})
}
