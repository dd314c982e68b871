package handlers

import (
	"errors"
	"time"

	"github.com/llmstudio/studio-backend/internal/config"
	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/middleware"
	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth   *services.AuthService
	tokens *services.TokenService
	cfg    *config.Config
}

func NewAuthHandler(auth *services.AuthService, tokens *services.TokenService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.auth.Register(req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(userResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.auth.Authenticate(req.Email, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid email or password",
		})
	}

	access, err := h.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		return internalError(c)
	}
	refresh, err := h.tokens.IssueRefreshToken(user.ID, user.Role)
	if err != nil {
		return internalError(c)
	}

	h.setCookie(c, "access_token", access, h.cfg.JWTAccessExpiry)
	h.setCookie(c, "refresh_token", refresh, h.cfg.JWTRefreshExpiry)

	return c.JSON(dto.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         userResponse(user),
	})
}

// Refresh mints a new access token from a refresh token taken from the
// body or the refresh_token cookie. The typ claim must be "refresh".
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	_ = c.BodyParser(&req)
	token := req.RefreshToken
	if token == "" {
		token = c.Cookies("refresh_token")
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Refresh token required",
		})
	}

	claims, err := h.tokens.Decode(token)
	if err != nil || claims.Type != services.TokenTypeRefresh {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or expired refresh token",
		})
	}

	if _, err := h.auth.GetActiveUser(claims.UserID); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid or expired refresh token",
		})
	}

	access, err := h.tokens.IssueAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return internalError(c)
	}

	h.setCookie(c, "access_token", access, h.cfg.JWTAccessExpiry)
	return c.JSON(dto.AccessTokenResponse{AccessToken: access, TokenType: "bearer"})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearCookie(c, "access_token")
	h.clearCookie(c, "refresh_token")
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(userResponse(user))
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: "Lax",
		Domain:   h.cfg.CookieDomain,
		Path:     "/",
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: "Lax",
		Domain:   h.cfg.CookieDomain,
		Path:     "/",
	})
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Email: user.Email, Role: user.Role}
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
