package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

const titleMaxLen = 30

// ConversationService owns conversation lifecycle and the append-only
// message log. Every operation is scoped by (conversation id, user id);
// an ownership miss is reported as not-found so foreign conversations
// are indistinguishable from absent ones.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// DeriveTitle builds a conversation name from the triggering message, or a
// timestamp when the message is blank.
func DeriveTitle(firstMessage string) string {
	trimmed := strings.TrimSpace(firstMessage)
	if trimmed == "" {
		return "Chat " + time.Now().Format("2006-01-02 15:04:05")
	}
	runes := []rune(trimmed)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return trimmed
}

func (s *ConversationService) Create(userID uuid.UUID, name string) (*models.Conversation, error) {
	if strings.TrimSpace(name) == "" {
		name = "New Conversation"
	}

	convo := models.Conversation{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		SystemPrompt: models.DefaultSystemPrompt,
		Temperature:  models.DefaultTemperature,
	}
	if err := s.db.Create(&convo).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &convo, nil
}

// Get returns the conversation with its messages in seq order, only if
// owned by userID.
func (s *ConversationService) Get(id, userID uuid.UUID) (*models.Conversation, error) {
	var convo models.Conversation
	err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("id = ? AND user_id = ?", id, userID).First(&convo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &convo, nil
}

// ConversationListing is one row of List output.
type ConversationListing struct {
	Conversation models.Conversation
	MessageCount int64
}

// List returns all conversations owned by userID, most recently updated
// first.
func (s *ConversationService) List(userID uuid.UUID) ([]ConversationListing, error) {
	var convos []models.Conversation
	if err := s.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&convos).Error; err != nil {
		return nil, err
	}

	listings := make([]ConversationListing, len(convos))
	for i, c := range convos {
		var count int64
		if err := s.db.Model(&models.Message{}).Where("conversation_id = ?", c.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		listings[i] = ConversationListing{Conversation: c, MessageCount: count}
	}
	return listings, nil
}

// AppendMessage appends one message to the conversation's log. The parent
// row is locked while the next seq is assigned, so concurrent appends to
// the same conversation serialize instead of losing writes.
func (s *ConversationService) AppendMessage(id, userID uuid.UUID, role, content string) (*models.Message, error) {
	var msg *models.Message
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		msg, err = appendLocked(tx, id, userID, role, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// AppendTurn appends a user message and the assistant reply as one atomic
// pair: either both persist or neither does.
func (s *ConversationService) AppendTurn(id, userID uuid.UUID, userContent, assistantContent string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := appendLocked(tx, id, userID, "user", userContent); err != nil {
			return err
		}
		_, err := appendLocked(tx, id, userID, "assistant", assistantContent)
		return err
	})
}

func appendLocked(tx *gorm.DB, id, userID uuid.UUID, role, content string) (*models.Message, error) {
	var convo models.Conversation
	q := tx.Where("id = ? AND user_id = ?", id, userID)
	// sqlite has no FOR UPDATE; its single-writer lock serializes anyway
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&convo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var maxSeq int
	row := tx.Model(&models.Message{}).Where("conversation_id = ?", id).
		Select("COALESCE(MAX(seq), 0)").Row()
	if err := row.Scan(&maxSeq); err != nil {
		return nil, err
	}

	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: id,
		Seq:            maxSeq + 1,
		Role:           role,
		Content:        content,
	}
	if err := tx.Create(&msg).Error; err != nil {
		return nil, err
	}

	if err := tx.Model(&convo).Update("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// UpdateSettings applies a partial settings update and bumps updated_at.
func (s *ConversationService) UpdateSettings(id, userID uuid.UUID, systemPrompt *string, temperature *float64) (*models.Conversation, error) {
	var convo models.Conversation
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&convo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if systemPrompt != nil {
		updates["system_prompt"] = *systemPrompt
	}
	if temperature != nil {
		updates["temperature"] = *temperature
	}
	if err := s.db.Model(&convo).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &convo, nil
}

// Delete is a hard delete of the conversation and its messages.
func (s *ConversationService) Delete(id, userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Conversation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error
	})
}

// Export renders the message log as role-labelled turns. The format is
// validated before any data is loaded.
func (s *ConversationService) Export(id, userID uuid.UUID, format string) (string, error) {
	switch format {
	case "md", "txt":
	default:
		return "", ErrUnsupportedFormat
	}

	convo, err := s.Get(id, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, m := range convo.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := strings.ToUpper(m.Role[:1]) + m.Role[1:]
		if format == "md" {
			fmt.Fprintf(&b, "**%s**: %s", label, m.Content)
		} else {
			fmt.Fprintf(&b, "%s: %s", label, m.Content)
		}
	}
	return b.String(), nil
}
