// Package seeder generates realistic demo traffic for development
// environments.
package seeder

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"time"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"sitepulse/internal/pkg/useragent"
	"sitepulse/internal/sites"
	"sitepulse/internal/tracking"
)

// Seeder populates the database with demo sites and traffic.
type Seeder struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	viewCount int
}

// NewSeeder creates a seeder that generates roughly viewCount page views
// spread over the demo sites.
func NewSeeder(dbManager cartridge.DBManager, logger *slog.Logger, viewCount int) *Seeder {
	if viewCount <= 0 {
		viewCount = 2000
	}
	return &Seeder{
		dbManager: dbManager,
		logger:    logger,
		viewCount: viewCount,
	}
}

// demoSites are the sites registered by the seeder.
var demoSites = []sites.Site{
	{Name: "Acme Marketing", Domain: "acme.example", GroupName: "marketing"},
	{Name: "Acme Docs", Domain: "docs.acme.example", GroupName: "product"},
	{Name: "Side Project", Domain: "side.example", GroupName: ""},
}

// journeys are path sequences a simulated visitor walks through.
var journeys = [][]string{
	{"/", "/about", "/contact"},
	{"/", "/features", "/pricing", "/signup"},
	{"/", "/blog", "/blog/welcome", "/signup"},
	{"/pricing", "/features", "/signup"},
	{"/", "/docs", "/docs/getting-started"},
	{"/", "/signup"},
	{"/blog/welcome", "/about", "/pricing"},
}

var demoUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:126.0) Gecko/20100101 Firefox/126.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Mobile Safari/537.36",
}

var demoReferrers = []string{
	"",
	"",
	"https://www.google.com/search?q=acme",
	"https://news.ycombinator.com/item?id=1",
	"https://duckduckgo.com/",
	"https://t.co/abc123",
}

var demoCountries = []struct {
	country string
	city    string
}{
	{"United States", "New York"},
	{"Germany", "Berlin"},
	{"United Kingdom", "London"},
	{"Japan", "Tokyo"},
	{"Brazil", "Sao Paulo"},
	{"", ""},
}

var demoEvents = []struct {
	name string
	data string
}{
	{"signup", `{"plan":"free"}`},
	{"newsletter_subscribed", `{"source":"footer"}`},
	{"checkout_completed", `{"plan":"pro","amount_cents":2999}`},
}

// Run seeds the demo sites and generates traffic for each of them.
func (s *Seeder) Run(ctx context.Context) error {
	seeded, err := s.seedSites()
	if err != nil {
		return err
	}

	perSite := s.viewCount / len(seeded)
	if perSite == 0 {
		perSite = 1
	}

	for _, site := range seeded {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.generateTraffic(site, perSite); err != nil {
			return fmt.Errorf("failed to seed traffic for %s: %w", site.Domain, err)
		}
	}

	s.logger.Info("Seeding completed",
		slog.Int("sites", len(seeded)),
		slog.Int("views_per_site", perSite))
	return nil
}

// seedSites registers the demo sites, reusing existing rows on reruns.
func (s *Seeder) seedSites() ([]*sites.Site, error) {
	db := s.dbManager.GetConnection()

	seeded := make([]*sites.Site, 0, len(demoSites))
	for _, template := range demoSites {
		existing, err := sites.GetSiteByDomain(db, template.Domain)
		if err == nil {
			seeded = append(seeded, existing)
			continue
		}

		site := template
		if err := sites.CreateSite(db, &site); err != nil {
			return nil, fmt.Errorf("failed to create demo site %s: %w", site.Domain, err)
		}
		s.logger.Info("Created demo site",
			slog.String("domain", site.Domain),
			slog.String("token", site.Token))
		seeded = append(seeded, &site)
	}
	return seeded, nil
}

// generateTraffic walks random visitor journeys through the last 90 days.
func (s *Seeder) generateTraffic(site *sites.Site, target int) error {
	db := s.dbManager.GetConnection()

	views := make([]tracking.PageView, 0, target)
	events := make([]tracking.Event, 0)

	for len(views) < target {
		visitorID := randomFingerprint()
		journey := journeys[mrand.Intn(len(journeys))]
		ua := demoUserAgents[mrand.Intn(len(demoUserAgents))]
		classification := useragent.Classify(ua)
		location := demoCountries[mrand.Intn(len(demoCountries))]
		referrer := demoReferrers[mrand.Intn(len(demoReferrers))]

		// Journey starts at a random point in the last 90 days, with a
		// bias towards recent days so realtime views have data
		daysAgo := mrand.Intn(90)
		if mrand.Intn(3) == 0 {
			daysAgo = mrand.Intn(2)
		}
		start := time.Now().UTC().
			AddDate(0, 0, -daysAgo).
			Add(-time.Duration(mrand.Intn(12)) * time.Hour)

		for step, path := range journey {
			ts := start.Add(time.Duration(step) * time.Minute)
			stepReferrer := ""
			if step == 0 {
				stepReferrer = referrer
			}
			views = append(views, tracking.PageView{
				SiteID:         site.ID,
				VisitorID:      visitorID,
				URL:            "https://" + site.Domain + path,
				Path:           path,
				Title:          "Demo " + path,
				Referrer:       stepReferrer,
				ReferrerDomain: tracking.ExtractDomain(stepReferrer),
				Browser:        classification.Browser,
				OS:             classification.OS,
				Device:         classification.Device,
				Country:        location.country,
				City:           location.city,
				ScreenWidth:    1920,
				ScreenHeight:   1080,
				Language:       "en-US",
				Timestamp:      ts,
			})
		}

		// Roughly one in five journeys converts into a custom event
		if mrand.Intn(5) == 0 {
			demo := demoEvents[mrand.Intn(len(demoEvents))]
			last := journey[len(journey)-1]
			events = append(events, tracking.Event{
				SiteID:    site.ID,
				VisitorID: visitorID,
				Name:      demo.name,
				Data:      demo.data,
				URL:       "https://" + site.Domain + last,
				Path:      last,
				Timestamp: start.Add(time.Duration(len(journey)) * time.Minute),
			})
		}
	}

	return sqlite.PerformWrite(s.logger, db, func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(views, 500).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		return tx.CreateInBatches(events, 500).Error
	})
}

// randomFingerprint returns a synthetic visitor fingerprint of the same
// shape real collection produces.
func randomFingerprint() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "0000000000000000"
	}
	return hex.EncodeToString(buf)
}
