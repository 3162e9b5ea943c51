package stats

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Summary holds the total page views and unique visitors of a window.
type Summary struct {
	PV int64 `json:"pv"`
	UV int64 `json:"uv"`
}

// DailyStat is one day of the traffic trend.
type DailyStat struct {
	Date string `json:"date"`
	PV   int64  `json:"pv"`
	UV   int64  `json:"uv"`
}

// PageStat is a path with its view and distinct visitor counts.
type PageStat struct {
	Path     string `json:"path"`
	Views    int64  `json:"views"`
	Visitors int64  `json:"visitors"`
}

// SourceStat is a referrer domain with its view count.
type SourceStat struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// BrowserStat is a browser family with its view count.
type BrowserStat struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

// OSStat is an operating system with its view count.
type OSStat struct {
	OS    string `json:"os"`
	Count int64  `json:"count"`
}

// DeviceStat is a device class with its view count.
type DeviceStat struct {
	Device string `json:"device"`
	Count  int64  `json:"count"`
}

// CountryStat is a country with its view count.
type CountryStat struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// Report is the full dimensional breakdown for one site and window.
type Report struct {
	Summary   Summary       `json:"summary"`
	Daily     []DailyStat   `json:"daily"`
	Pages     []PageStat    `json:"pages"`
	Sources   []SourceStat  `json:"sources"`
	Browsers  []BrowserStat `json:"browsers"`
	OS        []OSStat      `json:"os"`
	Devices   []DeviceStat  `json:"devices"`
	Countries []CountryStat `json:"countries"`
}

// topDimensionLimit caps the pages, sources and countries breakdowns.
const topDimensionLimit = 10

// GetSummary returns total page views and distinct visitors since the
// window start.
func GetSummary(db *gorm.DB, siteID uint, since time.Time) (Summary, error) {
	var summary Summary

	query := `
    SELECT
        COUNT(*) as pv,
        COUNT(DISTINCT visitor_id) as uv
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    `

	if err := db.Raw(query, siteID, since).Scan(&summary).Error; err != nil {
		return Summary{}, fmt.Errorf("error fetching summary: %w", err)
	}
	return summary, nil
}

// GetDailyTrend returns per-day page view and visitor counts in ascending
// date order. Days without traffic are absent from the result.
func GetDailyTrend(db *gorm.DB, siteID uint, since time.Time) ([]DailyStat, error) {
	results := make([]DailyStat, 0)

	query := `
    SELECT
        DATE(timestamp) as date,
        COUNT(*) as pv,
        COUNT(DISTINCT visitor_id) as uv
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    GROUP BY DATE(timestamp)
    ORDER BY date
    `

	if err := db.Raw(query, siteID, since).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching daily trend: %w", err)
	}
	return results, nil
}

// GetTopPages returns the most viewed paths with per-path distinct
// visitor counts.
func GetTopPages(db *gorm.DB, siteID uint, since time.Time) ([]PageStat, error) {
	results := make([]PageStat, 0)

	query := `
    SELECT
        path,
        COUNT(*) as views,
        COUNT(DISTINCT visitor_id) as visitors
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    GROUP BY path
    ORDER BY views DESC
    LIMIT ?
    `

	if err := db.Raw(query, siteID, since, topDimensionLimit).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching top pages: %w", err)
	}
	return results, nil
}

// GetTopSources returns the most common referrer domains. Direct traffic
// (empty referrer domain) is excluded.
func GetTopSources(db *gorm.DB, siteID uint, since time.Time) ([]SourceStat, error) {
	results := make([]SourceStat, 0)

	query := `
    SELECT
        referrer_domain as source,
        COUNT(*) as count
    FROM page_views
    WHERE site_id = ? AND timestamp >= ? AND referrer_domain != ''
    GROUP BY referrer_domain
    ORDER BY count DESC
    LIMIT ?
    `

	if err := db.Raw(query, siteID, since, topDimensionLimit).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching top sources: %w", err)
	}
	return results, nil
}

// GetBrowsers returns the full browser breakdown in descending order.
func GetBrowsers(db *gorm.DB, siteID uint, since time.Time) ([]BrowserStat, error) {
	results := make([]BrowserStat, 0)

	query := `
    SELECT
        browser,
        COUNT(*) as count
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    GROUP BY browser
    ORDER BY count DESC
    `

	if err := db.Raw(query, siteID, since).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching browsers: %w", err)
	}
	return results, nil
}

// GetOperatingSystems returns the full OS breakdown in descending order.
func GetOperatingSystems(db *gorm.DB, siteID uint, since time.Time) ([]OSStat, error) {
	results := make([]OSStat, 0)

	query := `
    SELECT
        os,
        COUNT(*) as count
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    GROUP BY os
    ORDER BY count DESC
    `

	if err := db.Raw(query, siteID, since).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching operating systems: %w", err)
	}
	return results, nil
}

// GetDevices returns the full device class breakdown in descending order.
func GetDevices(db *gorm.DB, siteID uint, since time.Time) ([]DeviceStat, error) {
	results := make([]DeviceStat, 0)

	query := `
    SELECT
        device,
        COUNT(*) as count
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    GROUP BY device
    ORDER BY count DESC
    `

	if err := db.Raw(query, siteID, since).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching devices: %w", err)
	}
	return results, nil
}

// GetTopCountries returns the most common countries. Views with no geo
// data are excluded.
func GetTopCountries(db *gorm.DB, siteID uint, since time.Time) ([]CountryStat, error) {
	results := make([]CountryStat, 0)

	query := `
    SELECT
        country,
        COUNT(*) as count
    FROM page_views
    WHERE site_id = ? AND timestamp >= ? AND country != ''
    GROUP BY country
    ORDER BY count DESC
    LIMIT ?
    `

	if err := db.Raw(query, siteID, since, topDimensionLimit).Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("error fetching top countries: %w", err)
	}
	return results, nil
}

// GetReport assembles the full report for a site and window start. A site
// with no traffic yields zero counts and empty breakdowns, never an error.
func GetReport(db *gorm.DB, siteID uint, since time.Time) (*Report, error) {
	summary, err := GetSummary(db, siteID, since)
	if err != nil {
		return nil, err
	}
	daily, err := GetDailyTrend(db, siteID, since)
	if err != nil {
		return nil, err
	}
	pages, err := GetTopPages(db, siteID, since)
	if err != nil {
		return nil, err
	}
	sources, err := GetTopSources(db, siteID, since)
	if err != nil {
		return nil, err
	}
	browsers, err := GetBrowsers(db, siteID, since)
	if err != nil {
		return nil, err
	}
	operatingSystems, err := GetOperatingSystems(db, siteID, since)
	if err != nil {
		return nil, err
	}
	devices, err := GetDevices(db, siteID, since)
	if err != nil {
		return nil, err
	}
	countries, err := GetTopCountries(db, siteID, since)
	if err != nil {
		return nil, err
	}

	return &Report{
		Summary:   summary,
		Daily:     daily,
		Pages:     pages,
		Sources:   sources,
		Browsers:  browsers,
		OS:        operatingSystems,
		Devices:   devices,
		Countries: countries,
	}, nil
}
