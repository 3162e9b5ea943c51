package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"sitepulse/internal/sessions"
)

// RequireAuth rejects requests without a valid dashboard session cookie.
func RequireAuth(store *sessions.Store, cookieName string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !store.Verify(c.Cookies(cookieName)) {
			logger.Debug("Unauthenticated request rejected", slog.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		return c.Next()
	}
}
