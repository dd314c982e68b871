package handlers

import (
	"time"

	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/registry"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *registry.Registry
}

func NewHealthHandler(db *gorm.DB, reg *registry.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: reg}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Models:    len(h.registry.All()),
	})
}
