package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Model            string     `json:"model"`
	UserInput        string     `json:"user_input"`
	ConversationID   *uuid.UUID `json:"conversation_id,omitempty"`
	ConversationName string     `json:"conversation_name,omitempty"`
}

type SendMessageResponse struct {
	User           string    `json:"user"`
	AI             string    `json:"ai"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

type GuestMessageRequest struct {
	Model     string `json:"model"`
	UserInput string `json:"user_input"`
}

type GuestMessageResponse struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

type MessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResponse struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	SystemPrompt string            `json:"system_prompt"`
	Temperature  float64           `json:"temperature"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Messages     []MessageResponse `json:"messages,omitempty"`
}

type ConversationSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MessageCount int64     `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	SystemPrompt *string  `json:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

type ModelInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}
