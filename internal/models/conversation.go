package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultSystemPrompt = "You are a helpful AI assistant."
	DefaultTemperature  = 0.7
)

// Conversation is a named, owned chat log. All reads and mutations are
// scoped by (id, user_id); a miss and an ownership violation are the same
// not-found.
type Conversation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	SystemPrompt string    `gorm:"type:text;default:'You are a helpful AI assistant.'" json:"system_prompt"`
	Temperature  float64   `gorm:"default:0.7" json:"temperature"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	Messages     []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Message is one turn in a conversation's append-only log. Seq is assigned
// under a row lock on the parent conversation and is strictly increasing;
// rows are never edited or removed individually.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_messages_convo_seq" json:"conversation_id"`
	Seq            int       `gorm:"not null;uniqueIndex:idx_messages_convo_seq" json:"seq"`
	Role           string    `gorm:"size:20;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// BeforeCreate backfills UUIDs so inserts work the same on postgres and
// sqlite.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
