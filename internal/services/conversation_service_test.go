package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/llmstudio/studio-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func registerUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user, err := NewAuthService(db).Register(email, "password123", "")
	require.NoError(t, err)
	return user
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "Hello world", DeriveTitle("Hello world"))
	assert.Equal(t, "Hello world", DeriveTitle("  Hello world  "))

	long := strings.Repeat("a", 50)
	title := DeriveTitle(long)
	assert.Equal(t, strings.Repeat("a", 30)+"...", title)

	// blank input falls back to a timestamp name
	assert.True(t, strings.HasPrefix(DeriveTitle("   "), "Chat "))
}

func TestCreateUsesDefaults(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", convo.Name)
	assert.Equal(t, models.DefaultSystemPrompt, convo.SystemPrompt)
	assert.Equal(t, models.DefaultTemperature, convo.Temperature)
}

func TestAppendAssignsSequentialSeq(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "Demo")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msg, err := svc.AppendMessage(convo.ID, user.ID, role, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
		assert.Equal(t, i+1, msg.Seq)
	}

	got, err := svc.Get(convo.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 5)
	for i, m := range got.Messages {
		assert.Equal(t, i+1, m.Seq)
	}
}

func TestAppendTurnPersistsPair(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "Demo")
	require.NoError(t, err)

	require.NoError(t, svc.AppendTurn(convo.ID, user.ID, "hi", "hello there"))

	got, err := svc.Get(convo.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[0].Content)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "hello there", got.Messages[1].Content)
}

func TestOwnershipMasksForeignConversations(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	owner := registerUser(t, db, "owner@example.com")
	other := registerUser(t, db, "other@example.com")

	convo, err := svc.Create(owner.ID, "Private")
	require.NoError(t, err)

	_, err = svc.Get(convo.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AppendMessage(convo.ID, other.ID, "user", "intrusion")
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(convo.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the owner still sees it untouched
	got, err := svc.Get(convo.ID, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
}

func TestListOrdersByRecency(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	first, err := svc.Create(user.ID, "First")
	require.NoError(t, err)
	second, err := svc.Create(user.ID, "Second")
	require.NoError(t, err)

	// touching the older conversation moves it to the front
	_, err = svc.AppendMessage(first.ID, user.ID, "user", "bump")
	require.NoError(t, err)

	listings, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, first.ID, listings[0].Conversation.ID)
	assert.Equal(t, int64(1), listings[0].MessageCount)
	assert.Equal(t, second.ID, listings[1].Conversation.ID)
	assert.Equal(t, int64(0), listings[1].MessageCount)
}

func TestDeleteRemovesMessages(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "Doomed")
	require.NoError(t, err)
	require.NoError(t, svc.AppendTurn(convo.ID, user.ID, "hi", "bye"))

	require.NoError(t, svc.Delete(convo.ID, user.ID))

	_, err = svc.Get(convo.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Message{}).Where("conversation_id = ?", convo.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateSettingsPartial(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "Tuned")
	require.NoError(t, err)

	prompt := "You are a pirate."
	updated, err := svc.UpdateSettings(convo.ID, user.ID, &prompt, nil)
	require.NoError(t, err)
	assert.Equal(t, prompt, updated.SystemPrompt)
	assert.Equal(t, models.DefaultTemperature, updated.Temperature)

	temp := 1.2
	updated, err = svc.UpdateSettings(convo.ID, user.ID, nil, &temp)
	require.NoError(t, err)
	assert.Equal(t, prompt, updated.SystemPrompt)
	assert.Equal(t, temp, updated.Temperature)
}

func TestExportFormats(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewConversationService(db)
	user := registerUser(t, db, "alice@example.com")

	convo, err := svc.Create(user.ID, "Exported")
	require.NoError(t, err)
	require.NoError(t, svc.AppendTurn(convo.ID, user.ID, "hi", "hello"))

	md, err := svc.Export(convo.ID, user.ID, "md")
	require.NoError(t, err)
	assert.Contains(t, md, "**User**: hi")
	assert.Contains(t, md, "**Assistant**: hello")

	txt, err := svc.Export(convo.ID, user.ID, "txt")
	require.NoError(t, err)
	assert.Contains(t, txt, "User: hi")
	assert.NotContains(t, txt, "**")

	_, err = svc.Export(convo.ID, user.ID, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = svc.Export(uuid.New(), user.ID, "md")
	assert.ErrorIs(t, err, ErrNotFound)
}
