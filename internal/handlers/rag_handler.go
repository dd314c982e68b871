package handlers

import (
	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RAGHandler struct {
	rag *services.RAGService
	cfg *config.Config
}

func NewRAGHandler(rag *services.RAGService, cfg *config.Config) *RAGHandler {
	return &RAGHandler{rag: rag, cfg: cfg}
}

func (h *RAGHandler) Ingest(c *fiber.Ctx) error {
	var req dto.RAGIngestRequest
	_ = c.BodyParser(&req)

	dir := req.Path
	if dir == "" {
		dir = h.cfg.RAGDocsDir
	}

	chunks, err := h.rag.Ingest(c.Context(), dir)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Ingestion failed: " + err.Error(),
		})
	}
	return c.JSON(dto.RAGIngestResponse{Chunks: chunks})
}

func (h *RAGHandler) Retrieve(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return badRequest(c, "q is required")
	}
	topK := c.QueryInt("top_k", 0)

	chunks, err := h.rag.Retrieve(c.Context(), query, topK)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Retrieval failed",
		})
	}
	return c.JSON(dto.RAGRetrieveResponse{Chunks: chunks})
}
