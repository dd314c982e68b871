package services

import (
	"testing"

	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/llmstudio/studio-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewAuthService(testutil.NewTestDB(t))

	user, err := svc.Register("alice@example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)

	got, err := svc.Authenticate("alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(testutil.NewTestDB(t))

	_, err := svc.Register("bob@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register("bob@example.com", "differentpass", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(testutil.NewTestDB(t))

	_, err := svc.Register("carol@example.com", "short", "")
	assert.Error(t, err)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc := NewAuthService(testutil.NewTestDB(t))

	_, err := svc.Register("dave@example.com", "password123", "")
	require.NoError(t, err)

	_, wrongPass := svc.Authenticate("dave@example.com", "wrongpassword")
	_, noUser := svc.Authenticate("nobody@example.com", "password123")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestRegisterCreatesEmptyConfig(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register("erin@example.com", "password123", "")
	require.NoError(t, err)

	var cfg models.UserConfig
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&cfg).Error)
	assert.JSONEq(t, "{}", string(cfg.Data))
}

func TestGetActiveUserRejectsInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register("frank@example.com", "password123", "")
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err = svc.GetActiveUser(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetActiveUser(uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserConfigMergeAndOverwrite(t *testing.T) {
	svc := NewAuthService(testutil.NewTestDB(t))

	user, err := svc.Register("grace@example.com", "password123", "")
	require.NoError(t, err)

	defaults := map[string]interface{}{"theme": "dark", "language": "en"}

	// nothing stored beyond the empty blob: defaults win
	data, err := svc.GetUserConfig(user.ID, defaults)
	require.NoError(t, err)
	assert.Equal(t, "dark", data["theme"])
	assert.Equal(t, "en", data["language"])

	// overwrite is whole-blob: stored keys shadow defaults, the rest remain
	_, err = svc.SetUserConfig(user.ID, map[string]interface{}{"theme": "light"})
	require.NoError(t, err)

	data, err = svc.GetUserConfig(user.ID, defaults)
	require.NoError(t, err)
	assert.Equal(t, "light", data["theme"])
	assert.Equal(t, "en", data["language"])
}
