package handlers

import (
	"errors"
	"log/slog"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/gateway"
	"github.com/llmstudio/studio-backend/internal/middleware"
	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/llmstudio/studio-backend/internal/registry"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ChatHandler struct {
	conversations *services.ConversationService
	gateway       *gateway.ModelGateway
	registry      *registry.Registry
	cfg           *config.Config
}

func NewChatHandler(conversations *services.ConversationService, gw *gateway.ModelGateway, reg *registry.Registry, cfg *config.Config) *ChatHandler {
	return &ChatHandler{conversations: conversations, gateway: gw, registry: reg, cfg: cfg}
}

// Send runs one chat turn for an authenticated user. The conversation is
// resolved or created first, the provider is invoked, and only on success
// is the user/assistant pair persisted.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserInput == "" {
		return badRequest(c, "user_input is required")
	}
	modelKey := req.Model
	if modelKey == "" {
		modelKey = h.cfg.DefaultModel
	}

	convo, err := h.resolveConversation(user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Conversation not found")
		}
		return internalError(c)
	}

	history := make([]gateway.Turn, len(convo.Messages))
	for i, m := range convo.Messages {
		history[i] = gateway.Turn{Role: m.Role, Content: m.Content}
	}

	reply, err := h.gateway.Invoke(c.Context(), modelKey, convo.SystemPrompt, history, req.UserInput, convo.Temperature)
	if err != nil {
		return h.gatewayError(c, err)
	}

	if err := h.conversations.AppendTurn(convo.ID, user.ID, req.UserInput, reply); err != nil {
		slog.Error("failed to persist chat turn", "error", err, "conversation_id", convo.ID)
		return internalError(c)
	}

	return c.JSON(dto.SendMessageResponse{
		User:           req.UserInput,
		AI:             reply,
		ConversationID: convo.ID,
	})
}

func (h *ChatHandler) resolveConversation(userID uuid.UUID, req *dto.SendMessageRequest) (*models.Conversation, error) {
	if req.ConversationID != nil {
		return h.conversations.Get(*req.ConversationID, userID)
	}

	name := req.ConversationName
	if name == "" {
		name = services.DeriveTitle(req.UserInput)
	}
	return h.conversations.Create(userID, name)
}

// GuestSend runs a single stateless turn. Nothing is persisted.
func (h *ChatHandler) GuestSend(c *fiber.Ctx) error {
	var req dto.GuestMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserInput == "" {
		return badRequest(c, "user_input is required")
	}
	modelKey := req.Model
	if modelKey == "" {
		modelKey = h.cfg.DefaultModel
	}

	reply, err := h.gateway.Invoke(c.Context(), modelKey, models.DefaultSystemPrompt, nil, req.UserInput, models.DefaultTemperature)
	if err != nil {
		return h.gatewayError(c, err)
	}

	return c.JSON(dto.GuestMessageResponse{User: req.UserInput, AI: reply})
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	listings, err := h.conversations.List(user.ID)
	if err != nil {
		return internalError(c)
	}

	summaries := make([]dto.ConversationSummary, len(listings))
	for i, l := range listings {
		summaries[i] = dto.ConversationSummary{
			ID:           l.Conversation.ID,
			Name:         l.Conversation.Name,
			MessageCount: l.MessageCount,
			UpdatedAt:    l.Conversation.UpdatedAt,
		}
	}
	return c.JSON(summaries)
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation id")
	}

	convo, err := h.conversations.Get(id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Conversation not found")
		}
		return internalError(c)
	}

	return c.JSON(conversationResponse(convo))
}

func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation id")
	}

	if err := h.conversations.Delete(id, user.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Conversation not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Conversation deleted"})
}

func (h *ChatHandler) UpdateSettings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation id")
	}

	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return badRequest(c, "temperature must be between 0 and 2")
	}

	convo, err := h.conversations.UpdateSettings(id, user.ID, req.SystemPrompt, req.Temperature)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Conversation not found")
		}
		return internalError(c)
	}
	return c.JSON(conversationResponse(convo))
}

func (h *ChatHandler) Export(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid conversation id")
	}

	format := c.Query("format", "md")
	body, err := h.conversations.Export(id, user.ID, format)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return badRequest(c, "Unsupported export format: "+format)
		}
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, "Conversation not found")
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{"format": format, "content": body})
}

func (h *ChatHandler) Models(c *fiber.Ctx) error {
	configs := h.registry.All()
	infos := make([]dto.ModelInfo, len(configs))
	for i, mc := range configs {
		infos[i] = dto.ModelInfo{Key: mc.Key, Name: mc.Name}
	}
	return c.JSON(infos)
}

func (h *ChatHandler) gatewayError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gateway.ErrUnknownModel) {
		return badRequest(c, "Unknown model")
	}

	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) {
		slog.Error("model gateway failure", "error", err, "retryable", gwErr.Retryable)
	} else {
		slog.Error("model gateway failure", "error", err)
	}
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
		Error: true, Message: "Model provider unavailable",
	})
}

func conversationResponse(convo *models.Conversation) dto.ConversationResponse {
	msgs := make([]dto.MessageResponse, len(convo.Messages))
	for i, m := range convo.Messages {
		msgs[i] = dto.MessageResponse{
			Role:      m.Role,
			Content:   m.Content,
			Seq:       m.Seq,
			CreatedAt: m.CreatedAt,
		}
	}
	return dto.ConversationResponse{
		ID:           convo.ID,
		Name:         convo.Name,
		SystemPrompt: convo.SystemPrompt,
		Temperature:  convo.Temperature,
		CreatedAt:    convo.CreatedAt,
		UpdatedAt:    convo.UpdatedAt,
		Messages:     msgs,
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}
