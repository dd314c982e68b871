package routes

import (
	"time"

	"github.com/llmstudio/studio-backend/internal/handlers"
	"github.com/llmstudio/studio-backend/internal/middleware"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	tokens *services.TokenService,
	authSvc *services.AuthService,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	configHandler *handlers.ConfigHandler,
	newsHandler *handlers.NewsHandler,
	ragHandler *handlers.RAGHandler,
	toolsHandler *handlers.ToolsHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// News is public; guests get headlines too
	api.Get("/news", newsHandler.Headlines)

	// Guest chat: single stateless turn, nothing persisted
	api.Post("/chat/guest", chatHandler.GuestSend)

	api.Get("/models", chatHandler.Models)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	protected := middleware.Authenticated(tokens, authSvc)

	api.Post("/auth/logout", protected, authHandler.Logout)
	api.Get("/auth/me", protected, authHandler.Me)

	// Chat — persisted conversations, owner-scoped
	api.Post("/chat/send", protected, chatHandler.Send)
	api.Get("/conversations", protected, chatHandler.List)
	api.Get("/conversations/:id", protected, chatHandler.Get)
	api.Delete("/conversations/:id", protected, chatHandler.Delete)
	api.Put("/conversations/:id/settings", protected, chatHandler.UpdateSettings)
	api.Get("/conversations/:id/export", protected, chatHandler.Export)
	// legacy alias kept for older clients
	api.Post("/chat/delete_session/:id", protected, chatHandler.Delete)

	// Per-user config blob
	api.Get("/me/config", protected, configHandler.Get)
	api.Put("/me/config", protected, configHandler.Update)

	// RAG
	api.Post("/rag/ingest", protected, ragHandler.Ingest)
	api.Get("/rag/retrieve", protected, ragHandler.Retrieve)

	// Tools
	tools := api.Group("/tools", protected)
	tools.Post("/markdown", toolsHandler.Markdown)
	tools.Post("/doc", toolsHandler.GenerateDoc)
	tools.Get("/context/export", toolsHandler.ExportContext)
	tools.Post("/context/import", toolsHandler.ImportContext)
}
