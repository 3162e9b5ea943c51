package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"sitepulse/internal/pkg/geo"
	"sitepulse/internal/pkg/useragent"
	"sitepulse/internal/sites"
	"sitepulse/internal/visitors"
)

// PageViewInput defines the input required to collect a page view.
type PageViewInput struct {
	IPAddress    string
	UserAgent    string
	URL          string
	Title        string
	Referrer     string
	Language     string
	ScreenWidth  int
	ScreenHeight int
}

// EventInput defines the input required to collect a custom event.
type EventInput struct {
	IPAddress string
	UserAgent string
	URL       string
	Name      string
	Data      string
}

// Collector enriches and stores incoming traffic for a site.
type Collector struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	resolver  geo.Resolver
}

// NewCollector creates a Collector backed by the given database manager.
func NewCollector(dbManager cartridge.DBManager, logger *slog.Logger, resolver geo.Resolver) *Collector {
	return &Collector{
		dbManager: dbManager,
		logger:    logger,
		resolver:  resolver,
	}
}

// CollectPageView resolves the site token, enriches the view with user agent
// and geo data, and appends it to the page view log. An unknown token is the
// only hard failure: enrichment errors degrade to empty fields.
func (c *Collector) CollectPageView(ctx context.Context, token string, input *PageViewInput) error {
	db := c.dbManager.GetConnection()

	site, err := sites.GetSiteByToken(db, token)
	if err != nil {
		return err
	}

	// Geo lookup runs concurrently with user agent classification so the
	// external endpoint's latency is not serialized with local work.
	locCh := make(chan geo.Location, 1)
	go func() {
		locCh <- c.resolver.Lookup(ctx, input.IPAddress)
	}()

	classification := useragent.Classify(input.UserAgent)
	location := <-locCh

	view := &PageView{
		SiteID:         site.ID,
		VisitorID:      visitors.BuildVisitorID(input.IPAddress, input.UserAgent, site.ID),
		URL:            input.URL,
		Path:           ExtractPath(input.URL),
		Title:          input.Title,
		Referrer:       input.Referrer,
		ReferrerDomain: ExtractDomain(input.Referrer),
		Browser:        classification.Browser,
		OS:             classification.OS,
		Device:         classification.Device,
		Country:        location.Country,
		City:           location.City,
		ScreenWidth:    input.ScreenWidth,
		ScreenHeight:   input.ScreenHeight,
		Language:       input.Language,
		Timestamp:      time.Now().UTC(),
	}

	err = sqlite.PerformWrite(c.logger, db, func(tx *gorm.DB) error {
		return tx.Create(view).Error
	})
	if err != nil {
		c.logger.Error("Failed to store page view",
			slog.Any("error", err),
			slog.Uint64("site_id", uint64(site.ID)))
		return fmt.Errorf("failed to store page view: %w", err)
	}

	return nil
}

// CollectEvent resolves the site token and appends a named custom event.
func (c *Collector) CollectEvent(ctx context.Context, token string, input *EventInput) error {
	db := c.dbManager.GetConnection()

	site, err := sites.GetSiteByToken(db, token)
	if err != nil {
		return err
	}

	event := &Event{
		SiteID:    site.ID,
		VisitorID: visitors.BuildVisitorID(input.IPAddress, input.UserAgent, site.ID),
		Name:      input.Name,
		Data:      input.Data,
		URL:       input.URL,
		Path:      ExtractPath(input.URL),
		Timestamp: time.Now().UTC(),
	}

	err = sqlite.PerformWrite(c.logger, db, func(tx *gorm.DB) error {
		return tx.Create(event).Error
	})
	if err != nil {
		c.logger.Error("Failed to store event",
			slog.Any("error", err),
			slog.String("event", input.Name),
			slog.Uint64("site_id", uint64(site.ID)))
		return fmt.Errorf("failed to store event: %w", err)
	}

	return nil
}
