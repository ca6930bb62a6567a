package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/noteduco342/lanchat-backend/internal/models"
)

func RequireRole(role models.UserRole) fiber.Handler {
	want := strings.ToLower(strings.TrimSpace(string(role)))
	return func(c *fiber.Ctx) error {
		userRole, _ := c.Locals("role").(string)
		if strings.ToLower(userRole) != want {
			return httpx.Forbidden(c, "forbidden", "Insufficient permissions")
		}
		return c.Next()
	}
}
