package middleware

import (
	"strings"

	"github.com/llmstudio/studio-backend/internal/dto"
	"github.com/llmstudio/studio-backend/internal/models"
	"github.com/llmstudio/studio-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "current_user"
	cookieName  = "access_token"
	bearerScope = "bearer "
)

// tokenFromRequest prefers the Authorization header, then falls back to
// the access_token cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > len(bearerScope) && strings.EqualFold(auth[:len(bearerScope)], bearerScope) {
		return auth[len(bearerScope):]
	}
	return c.Cookies(cookieName)
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// resolve decodes the presented token and loads the live user. A missing
// token resolves to (nil, nil): guest.
func resolve(c *fiber.Ctx, tokens *services.TokenService, auth *services.AuthService) (*models.User, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, nil
	}

	claims, err := tokens.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != services.TokenTypeAccess {
		return nil, services.ErrTokenInvalid
	}

	user, err := auth.GetActiveUser(claims.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticated requires a valid access token bound to a live user.
func Authenticated(tokens *services.TokenService, auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolve(c, tokens, auth)
		if err != nil || user == nil {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		}
		c.Locals(localUser, user)
		return c.Next()
	}
}

// OptionalAuth resolves the identity when token material is present but
// lets guests through. Bad tokens are still rejected: presenting invalid
// credentials is an error, not anonymity.
func OptionalAuth(tokens *services.TokenService, auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolve(c, tokens, auth)
		if err != nil {
			return unauthorized(c, "Unauthorized: invalid or expired token")
		}
		if user != nil {
			c.Locals(localUser, user)
		}
		return c.Next()
	}
}

// RequireRoles returns 403 for an authenticated user whose role is not in
// the list. Must run after Authenticated.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c, "Unauthorized")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Forbidden",
		})
	}
}

// CurrentUser returns the resolved user, or nil for a guest.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}
