// Package internal contains core application functionality
package internal

import (
	"fmt"
	"time"

	"github.com/karloscodes/cartridge"

	"sitepulse/internal/config"
	"sitepulse/internal/database"
	"sitepulse/internal/jobs"
	"sitepulse/internal/pkg/geo"
	"sitepulse/internal/sessions"
)

// Application wraps cartridge.Application with sitepulse-specific components
type Application struct {
	*cartridge.Application
	DBManager *database.DBManager
	Sessions  *sessions.Store
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := sessions.NewStore(time.Duration(cfg.GetSessionTTL())*time.Second, nil)
	resolver := geo.NewResolver(cfg, logger)

	scheduler, err := jobs.NewScheduler(dbManager, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jobs: %w", err)
	}

	// Beacons are posted from every tracked page, so the Sec-Fetch-Site
	// middleware must accept cross-site requests (the default only allows
	// same-origin and direct navigation)
	serverCfg := cartridge.DefaultServerConfig()
	serverCfg.SecFetchSiteAllowedValues = []string{"cross-site", "same-site", "same-origin"}

	app, err := cartridge.NewApplication(cartridge.ApplicationOptions{
		Config:            cfg,
		Logger:            logger,
		DBManager:         dbManager,
		ServerConfig:      serverCfg,
		RouteMountFunc:    MountAppRoutes(store, resolver),
		BackgroundWorkers: []cartridge.BackgroundWorker{scheduler},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	return &Application{
		Application: app,
		DBManager:   dbManager,
		Sessions:    store,
	}, nil
}
