package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"sitepulse/internal/pkg/geo"
	"sitepulse/internal/sites"
	"sitepulse/internal/tracking"
)

// CollectPageViewParams is the page view beacon payload.
type CollectPageViewParams struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	Referrer     string `json:"referrer"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	Language     string `json:"language"`
}

// CollectEventParams is the custom event beacon payload.
type CollectEventParams struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
	URL  string          `json:"url"`
}

// CollectPageViewHandler handles POST /api/collect/:token. Beacons arrive
// as text/plain, so the body is decoded directly instead of relying on
// the Content-Type header.
func CollectPageViewHandler(resolver geo.Resolver) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		token := ctx.Params("token")

		var params CollectPageViewParams
		if err := json.Unmarshal(ctx.Body(), &params); err != nil {
			ctx.Logger.Debug("Failed to parse page view payload", slog.Any("error", err))
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request",
			})
		}

		collector := tracking.NewCollector(ctx.DBManager, ctx.Logger, resolver)
		input := &tracking.PageViewInput{
			IPAddress:    getClientIP(ctx.Ctx),
			UserAgent:    ctx.Get("User-Agent"),
			URL:          params.URL,
			Title:        params.Title,
			Referrer:     params.Referrer,
			Language:     params.Language,
			ScreenWidth:  params.ScreenWidth,
			ScreenHeight: params.ScreenHeight,
		}

		if err := collector.CollectPageView(context.Background(), token, input); err != nil {
			var notFound *sites.SiteNotFoundError
			if errors.As(err, &notFound) {
				ctx.Logger.Debug("Page view for unknown token", slog.String("token", token))
				return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
					"error": "Site not found",
				})
			}
			ctx.Logger.Error("Failed to collect page view", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to collect page view",
			})
		}

		return ctx.JSON(fiber.Map{"success": true})
	}
}

// CollectEventHandler handles POST /api/event/:token.
func CollectEventHandler(resolver geo.Resolver) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		token := ctx.Params("token")

		var params CollectEventParams
		if err := json.Unmarshal(ctx.Body(), &params); err != nil || params.Name == "" {
			ctx.Logger.Debug("Failed to parse event payload", slog.Any("error", err))
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request",
			})
		}

		collector := tracking.NewCollector(ctx.DBManager, ctx.Logger, resolver)
		input := &tracking.EventInput{
			IPAddress: getClientIP(ctx.Ctx),
			UserAgent: ctx.Get("User-Agent"),
			URL:       params.URL,
			Name:      params.Name,
			Data:      string(params.Data),
		}

		if err := collector.CollectEvent(context.Background(), token, input); err != nil {
			var notFound *sites.SiteNotFoundError
			if errors.As(err, &notFound) {
				ctx.Logger.Debug("Event for unknown token", slog.String("token", token))
				return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
					"error": "Site not found",
				})
			}
			ctx.Logger.Error("Failed to collect event", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to collect event",
			})
		}

		return ctx.JSON(fiber.Map{"success": true})
	}
}
