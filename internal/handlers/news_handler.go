package handlers

import (
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NewsHandler struct {
	news *services.NewsService
}

func NewNewsHandler(news *services.NewsService) *NewsHandler {
	return &NewsHandler{news: news}
}

// Headlines always answers 200; provider failures degrade to an empty
// list tagged source "error".
func (h *NewsHandler) Headlines(c *fiber.Ctx) error {
	region := c.Query("region", "us")
	limit := c.QueryInt("limit", 6)
	provider := c.Query("provider", "auto")

	return c.JSON(h.news.FetchHeadlines(c.Context(), region, limit, provider))
}
