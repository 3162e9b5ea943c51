// Package geo provides best-effort IP geolocation for event enrichment.
//
// Lookups never fail ingestion: every error path degrades to an empty
// Location, which readers treat as "unknown".
package geo

import (
	"context"
	"log/slog"

	"sitepulse/internal/config"
)

// Location is the result of a geo lookup. Empty strings mean unknown.
type Location struct {
	Country string
	City    string
}

// Resolver looks up the coarse geography for a client IP. Implementations
// must absorb their own failures and return the zero Location instead of
// an error; the ingestion pipeline never blocks or retries on geo.
type Resolver interface {
	Lookup(ctx context.Context, ip string) Location
}

// NoopResolver always returns the empty Location. Used in tests and in
// deployments with geo lookups disabled.
type NoopResolver struct{}

func (NoopResolver) Lookup(context.Context, string) Location {
	return Location{}
}

// NewResolver picks the resolver for the current configuration: a local
// GeoLite2 database when one is configured and readable, the HTTP lookup
// service otherwise, or nothing at all when lookups are disabled.
func NewResolver(cfg *config.Config, logger *slog.Logger) Resolver {
	if !cfg.GeoLookupEnabled {
		logger.Info("Geo lookups disabled")
		return NoopResolver{}
	}

	if cfg.GeoDBPath != "" {
		resolver, err := NewMaxMindResolver(cfg.GeoDBPath, logger)
		if err == nil {
			logger.Info("Using local GeoLite2 database", slog.String("path", cfg.GeoDBPath))
			return resolver
		}
		logger.Warn("Failed to open GeoLite2 database, falling back to HTTP lookups",
			slog.String("path", cfg.GeoDBPath),
			slog.Any("error", err))
	}

	return NewHTTPResolver(cfg.GeoHTTPEndpoint, cfg.GetGeoTimeout(), logger)
}
