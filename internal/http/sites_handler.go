package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"log/slog"
	"gorm.io/gorm"

	"github.com/karloscodes/cartridge"

	"sitepulse/internal/sites"
	"sitepulse/internal/stats"
)

// SiteCreateParams is the payload for registering a site.
type SiteCreateParams struct {
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	GroupName string `json:"group_name"`
	Notes     string `json:"notes"`
}

// SiteUpdateParams carries a partial site update. Nil fields are left
// untouched.
type SiteUpdateParams struct {
	Name      *string `json:"name"`
	GroupName *string `json:"group_name"`
	Notes     *string `json:"notes"`
}

// SiteListItem is one entry of the site list, including today's traffic.
type SiteListItem struct {
	sites.Site
	TodayPV int64 `json:"today_pv"`
	TodayUV int64 `json:"today_uv"`
}

// SitesCreateAction handles POST /api/sites.
func SitesCreateAction(ctx *cartridge.Context) error {
	var params SiteCreateParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse site payload", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	}

	if params.Domain == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Domain is required",
		})
	}

	site := sites.Site{
		Name:      params.Name,
		Domain:    params.Domain,
		GroupName: params.GroupName,
		Notes:     params.Notes,
	}

	if err := sites.CreateSite(ctx.DB(), &site); err != nil {
		var dup *sites.DuplicateDomainError
		if errors.As(err, &dup) {
			return ctx.Status(http.StatusConflict).JSON(fiber.Map{
				"error": "Domain already registered",
			})
		}
		ctx.Logger.Error("Failed to create site", slog.Any("error", err), slog.String("domain", params.Domain))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create site",
		})
	}

	ctx.Logger.Info("Site created",
		slog.Uint64("id", uint64(site.ID)),
		slog.String("domain", site.Domain))
	return ctx.Status(http.StatusCreated).JSON(site)
}

// SitesIndexAction handles GET /api/sites, returning the grouped site
// list with today's traffic per site.
func SitesIndexAction(clock stats.TimeProvider) func(*cartridge.Context) error {
	return func(ctx *cartridge.Context) error {
		db := ctx.DB()

		all, err := sites.GetAllSites(db)
		if err != nil {
			ctx.Logger.Error("Failed to list sites", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list sites",
			})
		}

		counts, err := stats.GetTodayCountsBySite(db, clock.Now())
		if err != nil {
			ctx.Logger.Error("Failed to load today's counts", slog.Any("error", err))
			return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to list sites",
			})
		}

		items := make([]SiteListItem, len(all))
		for i, site := range all {
			items[i] = SiteListItem{
				Site:    site,
				TodayPV: counts[site.ID].PV,
				TodayUV: counts[site.ID].UV,
			}
		}
		return ctx.JSON(items)
	}
}

// SiteUpdateAction handles PUT /api/sites/:id with a partial update.
func SiteUpdateAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid site ID",
		})
	}

	var params SiteUpdateParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse site update payload", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request",
		})
	}

	db := ctx.DB()
	site, err := sites.GetSiteByID(db, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Site not found",
			})
		}
		ctx.Logger.Error("Failed to load site", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update site",
		})
	}

	if params.Name != nil {
		site.Name = *params.Name
	}
	if params.GroupName != nil {
		site.GroupName = *params.GroupName
	}
	if params.Notes != nil {
		site.Notes = *params.Notes
	}

	if err := sites.UpdateSite(db, &site); err != nil {
		ctx.Logger.Error("Failed to update site", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update site",
		})
	}

	return ctx.JSON(fiber.Map{"success": true})
}

// SiteDeleteAction handles DELETE /api/sites/:id, removing the site and
// all of its collected traffic.
func SiteDeleteAction(ctx *cartridge.Context) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid site ID",
		})
	}

	if err := sites.DeleteSite(ctx.DB(), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(http.StatusNotFound).JSON(fiber.Map{
				"error": "Site not found",
			})
		}
		ctx.Logger.Error("Failed to delete site", slog.Any("error", err), slog.Int("id", id))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete site",
		})
	}

	ctx.Logger.Info("Site deleted", slog.Int("id", id))
	return ctx.JSON(fiber.Map{"success": true})
}
