package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"log/slog"

	"github.com/karloscodes/cartridge"
	"golang.org/x/crypto/bcrypt"

	"sitepulse/internal/config"
	"sitepulse/internal/sessions"
)

// LoginParams is the credential payload for the login endpoint.
type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionCookieName returns the name of the dashboard session cookie.
func SessionCookieName(cfg *config.Config) string {
	return cfg.AppName + "_session"
}

// checkPassword compares a submitted password against the configured
// admin credential. A bcrypt hash in the config is compared as such,
// anything else falls back to a constant time comparison.
func checkPassword(configured, submitted string) bool {
	if strings.HasPrefix(configured, "$2a$") || strings.HasPrefix(configured, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(submitted)) == 1
}

// LoginAction handles POST /api/login against the configured admin
// credentials and sets the HTTP-only session cookie on success.
func LoginAction(store *sessions.Store) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		cfg := config.GetConfig()

		var params LoginParams
		if err := ctx.BodyParser(&params); err != nil {
			ctx.Logger.Debug("Failed to parse login payload", slog.Any("error", err))
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request",
			})
		}

		usernameOK := subtle.ConstantTimeCompare([]byte(params.Username), []byte(cfg.AdminUser)) == 1
		if !usernameOK || !checkPassword(cfg.AdminPassword, params.Password) {
			ctx.Logger.Warn("Failed login attempt", slog.String("username", params.Username))
			return ctx.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid username or password",
			})
		}

		id, err := store.Create()
		if err != nil {
			ctx.Logger.Error("Failed to create session", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to create session",
			})
		}

		ctx.Cookie(&fiber.Cookie{
			Name:     SessionCookieName(cfg),
			Value:    id,
			HTTPOnly: true,
			Secure:   cfg.IsProduction(),
			SameSite: fiber.CookieSameSiteLaxMode,
			MaxAge:   cfg.GetSessionTTL(),
			Expires:  time.Now().Add(time.Duration(cfg.GetSessionTTL()) * time.Second),
		})

		ctx.Logger.Info("Admin logged in")
		return ctx.JSON(fiber.Map{"success": true})
	}
}

// LogoutAction handles POST /api/logout, destroying the session and
// clearing its cookie.
func LogoutAction(store *sessions.Store) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		cfg := config.GetConfig()
		cookieName := SessionCookieName(cfg)

		if id := ctx.Ctx.Cookies(cookieName); id != "" {
			store.Destroy(id)
		}
		ctx.ClearCookie(cookieName)

		return ctx.JSON(fiber.Map{"success": true})
	}
}

// CheckAuthAction handles GET /api/check-auth for the dashboard's login
// gate.
func CheckAuthAction(store *sessions.Store) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		cfg := config.GetConfig()

		if store.Verify(ctx.Ctx.Cookies(SessionCookieName(cfg))) {
			return ctx.JSON(fiber.Map{
				"authenticated": true,
				"username":      cfg.AdminUser,
			})
		}
		return ctx.JSON(fiber.Map{"authenticated": false})
	}
}
