package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/httpx"
	"github.com/samber/lo"
)

// OriginAllowed rejects cross-origin requests from origins not in allowed.
// An empty list or a request without Origin passes.
func OriginAllowed(allowed []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		if !lo.Contains(allowed, origin) {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}
