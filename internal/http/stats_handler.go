package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"log/slog"

	"github.com/karloscodes/cartridge"

	"sitepulse/internal/stats"
)

// StatsAction handles GET /api/stats/:id?period=7d. A site without
// traffic, including an unknown site ID, yields an empty report.
func StatsAction(clock stats.TimeProvider) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid site ID",
			})
		}

		period := ctx.Query("period", stats.DefaultPeriod)
		since := stats.ResolvePeriod(period, clock.Now())

		report, err := stats.GetReport(ctx.DB(), uint(id), since)
		if err != nil {
			ctx.Logger.Error("Failed to build report",
				slog.Any("error", err),
				slog.Int("site_id", id),
				slog.String("period", period))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build report",
			})
		}

		return ctx.JSON(report)
	}
}

// RealtimeAction handles GET /api/realtime/:id.
func RealtimeAction(clock stats.TimeProvider) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		id, err := ctx.ParamsInt("id")
		if err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid site ID",
			})
		}

		realtime, err := stats.GetRealtime(ctx.DB(), uint(id), clock.Now())
		if err != nil {
			ctx.Logger.Error("Failed to build realtime snapshot",
				slog.Any("error", err),
				slog.Int("site_id", id))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build realtime snapshot",
			})
		}

		return ctx.JSON(realtime)
	}
}

// OverviewAction handles GET /api/overview across all sites.
func OverviewAction(clock stats.TimeProvider) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		overview, err := stats.GetOverview(ctx.DB(), clock.Now())
		if err != nil {
			ctx.Logger.Error("Failed to build overview", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to build overview",
			})
		}

		return ctx.JSON(overview)
	}
}
