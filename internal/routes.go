package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "sitepulse/api/v1"
	"sitepulse/internal/config"
	"sitepulse/internal/http"
	"sitepulse/internal/http/middleware"
	"sitepulse/internal/pkg/geo"
	"sitepulse/internal/sessions"
	"sitepulse/internal/stats"
)

// publicCORSConfig returns the standard CORS configuration for public endpoints.
// All public endpoints share this permissive CORS setup for cross-origin access.
var publicCORSConfig = &cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization, Referrer, User-Agent",
}

// MountAppRoutes returns a route mount function bound to the session
// store and geo resolver created at startup.
func MountAppRoutes(store *sessions.Store, resolver geo.Resolver) func(*cartridge.Server) {
	return func(srv *cartridge.Server) {
		cfg := config.GetConfig()
		clock := &stats.DefaultTimeProvider{}
		logger := srv.GetLogger()

		// Helper to conditionally apply rate limiting (only in production)
		// In development/test, rate limiting would interfere with testing
		conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
			return func(c *fiber.Ctx) error {
				if cfg.IsProduction() {
					return limiter(c)
				}
				return c.Next()
			}
		}

		// Rate limiter for public beacon ingestion (70 requests per minute per IP)
		publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
			cartridgemiddleware.WithMax(70),
			cartridgemiddleware.WithDuration(time.Minute),
		))

		// Stricter rate limiter for auth endpoints to slow brute force attempts
		authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
			cartridgemiddleware.WithMax(10),
			cartridgemiddleware.WithDuration(time.Minute),
		))

		// Public beacon config: rate limiting + permissive CORS so any
		// tracked page can post across origins
		// CORS runs first ensuring 403 responses have CORS headers
		// Global SecFetchSite middleware allows: cross-site, same-site, same-origin
		publicAPIConfig := &cartridge.RouteConfig{
			EnableCORS:       true,
			WriteConcurrency: false,
			CustomMiddleware: []fiber.Handler{publicRateLimiter},
			CORSConfig:       publicCORSConfig,
		}

		// Tracker script delivery (GET only, no write concurrency concerns)
		trackerConfig := &cartridge.RouteConfig{
			EnableCORS:       true,
			CustomMiddleware: []fiber.Handler{publicRateLimiter},
			CORSConfig:       publicCORSConfig,
		}

		// Admin API: everything behind the session cookie
		adminAPIConfig := &cartridge.RouteConfig{
			CustomMiddleware: []fiber.Handler{
				middleware.RequireAuth(store, http.SessionCookieName(cfg), logger),
			},
		}

		// === HEALTH ===
		srv.Get("/_health", http.HealthIndexAction)
		srv.Head("/_health", http.HealthIndexAction)

		// === PUBLIC COLLECTION ROUTES ===
		srv.Post("/api/collect/:token", v1.CollectPageViewHandler(resolver), publicAPIConfig)
		srv.Options("/api/collect/:token", func(ctx *cartridge.Context) error {
			return ctx.SendStatus(fiber.StatusNoContent)
		}, publicAPIConfig)
		srv.Post("/api/event/:token", v1.CollectEventHandler(resolver), publicAPIConfig)
		srv.Options("/api/event/:token", func(ctx *cartridge.Context) error {
			return ctx.SendStatus(fiber.StatusNoContent)
		}, publicAPIConfig)

		// === TRACKER SCRIPT ===
		srv.Get("/tracker.js", v1.GetTrackerAction, trackerConfig)

		// === AUTHENTICATION ROUTES ===
		loginConfig := &cartridge.RouteConfig{
			CustomMiddleware: []fiber.Handler{authRateLimiter},
		}
		srv.Post("/api/login", http.LoginAction(store), loginConfig)
		srv.Post("/api/logout", http.LogoutAction(store))
		srv.Get("/api/check-auth", http.CheckAuthAction(store))

		// === PROTECTED REPORTING ROUTES ===
		srv.Get("/api/stats/:id", http.StatsAction(clock), adminAPIConfig)
		srv.Get("/api/realtime/:id", http.RealtimeAction(clock), adminAPIConfig)
		srv.Get("/api/overview", http.OverviewAction(clock), adminAPIConfig)

		// === PROTECTED SITE MANAGEMENT ROUTES ===
		srv.Post("/api/sites", http.SitesCreateAction, adminAPIConfig)
		srv.Get("/api/sites", http.SitesIndexAction(clock), adminAPIConfig)
		srv.Put("/api/sites/:id", http.SiteUpdateAction, adminAPIConfig)
		srv.Post("/api/sites/:id", http.SiteUpdateAction, adminAPIConfig)
		srv.Delete("/api/sites/:id", http.SiteDeleteAction, adminAPIConfig)
	}
}
