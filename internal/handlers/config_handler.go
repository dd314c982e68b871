package handlers

import (
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/middleware"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// defaultUserConfig is the baseline every stored config is merged over.
func defaultUserConfig() map[string]interface{} {
	return map[string]interface{}{
		"theme":    "dark",
		"language": "en",
		"features": map[string]interface{}{
			"context_export": true,
			"context_import": true,
		},
	}
}

type ConfigHandler struct {
	auth *services.AuthService
}

func NewConfigHandler(auth *services.AuthService) *ConfigHandler {
	return &ConfigHandler{auth: auth}
}

func (h *ConfigHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	data, err := h.auth.GetUserConfig(user.ID, defaultUserConfig())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.ConfigResponse{Data: data})
}

func (h *ConfigHandler) Update(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req dto.ConfigUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Data == nil {
		return badRequest(c, "data object is required")
	}

	data, err := h.auth.SetUserConfig(user.ID, req.Data)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.ConfigResponse{Data: data})
}
