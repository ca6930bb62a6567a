package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/models"
)

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// AuthRequired accepts "Authorization: Bearer <token>" or, for WebSocket
// upgrades where browsers cannot set headers, a token query parameter.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return httpx.Unauthorized(c, "invalid_authorization", "Invalid authorization format")
		}

		user, err := auth.Authenticate(tokenString)
		if err != nil {
			return httpx.Dispatch(c, err)
		}

		c.Locals("userID", user.ID)
		c.Locals("role", string(user.Role))
		c.Locals("user", user)

		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := strings.TrimSpace(c.Get("Authorization"))
	if authHeader == "" {
		return c.Query("token"), true
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
