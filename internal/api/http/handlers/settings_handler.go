package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/request-service/internal/config"
)

// SettingsHandler exposes the runtime notification and SLA settings to
// admins. Reload re-reads the environment and swaps the snapshot; in-flight
// operations keep the settings they started with.
type SettingsHandler struct {
	runtime *config.Runtime
	logger  *zap.Logger
}

func NewSettingsHandler(runtime *config.Runtime, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{runtime: runtime, logger: logger}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.runtime.Snapshot())
}

func (h *SettingsHandler) Reload(c *fiber.Ctx) error {
	h.runtime.Reload(config.DefaultSettings())
	h.logger.Info("runtime settings reloaded")
	return c.JSON(h.runtime.Snapshot())
}
