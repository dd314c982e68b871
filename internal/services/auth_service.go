package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService persists user identities and verifies credentials.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a user and its empty config blob atomically. The role
// defaults to "user"; duplicate emails fail with ErrEmailTaken.
func (s *AuthService) Register(email, password, role string) (*models.User, error) {
	if email == "" || len(password) < 8 {
		return nil, errors.New("email required and password must be at least 8 characters")
	}
	if role == "" {
		role = "user"
	}

	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		cfg := models.UserConfig{
			ID:     uuid.New(),
			UserID: user.ID,
			Data:   datatypes.JSON([]byte("{}")),
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Authenticate looks up by email and verifies the password against the
// stored hash. A missing email and a wrong password are indistinguishable.
func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetActiveUser resolves a user id to a live account.
func (s *AuthService) GetActiveUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// GetUserConfig returns the stored blob merged over the given defaults.
// Stored keys win; the merge is shallow, matching the original loader.
func (s *AuthService) GetUserConfig(userID uuid.UUID, defaults map[string]interface{}) (map[string]interface{}, error) {
	merged := make(map[string]interface{}, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}

	var cfg models.UserConfig
	if err := s.db.Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return merged, nil
		}
		return nil, err
	}

	stored := make(map[string]interface{})
	if len(cfg.Data) > 0 {
		if err := json.Unmarshal(cfg.Data, &stored); err != nil {
			return nil, fmt.Errorf("corrupt user config blob: %w", err)
		}
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged, nil
}

// SetUserConfig overwrites the whole blob (last write wins, no merge).
func (s *AuthService) SetUserConfig(userID uuid.UUID, data map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	blob := datatypes.JSON(raw)

	var cfg models.UserConfig
	err = s.db.Where("user_id = ?", userID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.UserConfig{ID: uuid.New(), UserID: userID, Data: blob}
		if err := s.db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&cfg).Update("data", blob).Error; err != nil {
		return nil, err
	}
	return data, nil
}
