package geo

import (
	"context"
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/pariz/gountries"
)

// MaxMindResolver resolves against a local GeoLite2 City database. ISO
// country codes are mapped to display names so both resolver kinds store
// the same country representation.
type MaxMindResolver struct {
	db        *geoip2.Reader
	countries *gountries.Query
	logger    *slog.Logger
}

// NewMaxMindResolver opens the GeoLite2 database at the given path.
func NewMaxMindResolver(path string, logger *slog.Logger) (*MaxMindResolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}

	return &MaxMindResolver{
		db:        db,
		countries: gountries.New(),
		logger:    logger,
	}, nil
}

func (r *MaxMindResolver) Lookup(_ context.Context, ip string) Location {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}
	}

	record, err := r.db.City(parsed)
	if err != nil {
		r.logger.Debug("GeoLite2 lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return Location{}
	}

	loc := Location{
		Country: r.countryName(record.Country.IsoCode),
		City:    record.City.Names["en"],
	}
	return loc
}

// Close releases the underlying database handle.
func (r *MaxMindResolver) Close() error {
	return r.db.Close()
}

func (r *MaxMindResolver) countryName(isoCode string) string {
	if isoCode == "" {
		return ""
	}

	country, err := r.countries.FindCountryByAlpha(isoCode)
	if err != nil {
		// Fall back to the raw code rather than dropping the dimension.
		return isoCode
	}
	return country.Name.Common
}
