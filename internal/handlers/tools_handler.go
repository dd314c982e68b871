package handlers

import (
	"path/filepath"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/tools"
	"github.com/gofiber/fiber/v2"
)

type ToolsHandler struct {
	cfg *config.Config
}

func NewToolsHandler(cfg *config.Config) *ToolsHandler {
	return &ToolsHandler{cfg: cfg}
}

func (h *ToolsHandler) contextPath() string {
	return filepath.Join(h.cfg.GeneratedDir, "context.json")
}

func (h *ToolsHandler) Markdown(c *fiber.Ctx) error {
	var req dto.MarkdownRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Text == "" {
		return badRequest(c, "text is required")
	}

	html, path, err := tools.ConvertMarkdown(req.Text, req.FileName, h.cfg.GeneratedDir)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.MarkdownResponse{HTML: html, File: path})
}

func (h *ToolsHandler) GenerateDoc(c *fiber.Ctx) error {
	var req dto.DocGenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Text == "" {
		return badRequest(c, "text is required")
	}

	path, err := tools.GenerateDocx(req.Text, req.FileName, h.cfg.GeneratedDir)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.DocGenResponse{File: path})
}

func (h *ToolsHandler) ExportContext(c *fiber.Ctx) error {
	data, err := tools.ExportContext(h.contextPath())
	if err != nil {
		return internalError(c)
	}
	return c.JSON(data)
}

func (h *ToolsHandler) ImportContext(c *fiber.Ctx) error {
	if err := tools.ImportContext(h.contextPath(), c.Body()); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"message": "Context imported"})
}
