package stats

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Overview is the cross-site dashboard summary.
type Overview struct {
	TodayPV   int64 `json:"today_pv"`
	TodayUV   int64 `json:"today_uv"`
	SiteCount int64 `json:"site_count"`
	Online    int64 `json:"online"`
}

// SiteTodayCounts holds today's traffic for a single site.
type SiteTodayCounts struct {
	SiteID uint
	PV     int64
	UV     int64
}

// GetOverview returns today's totals across all sites, the number of
// registered sites, and visitors online within the last half hour.
func GetOverview(db *gorm.DB, now time.Time) (*Overview, error) {
	overview := &Overview{}

	todayQuery := `
    SELECT
        COUNT(*) as today_pv,
        COUNT(DISTINCT visitor_id) as today_uv
    FROM page_views
    WHERE DATE(timestamp) = DATE(?)
    `
	if err := db.Raw(todayQuery, now).Scan(overview).Error; err != nil {
		return nil, fmt.Errorf("error fetching today's totals: %w", err)
	}

	if err := db.Raw("SELECT COUNT(*) FROM sites").Scan(&overview.SiteCount).Error; err != nil {
		return nil, fmt.Errorf("error counting sites: %w", err)
	}

	onlineQuery := `
    SELECT COUNT(DISTINCT visitor_id)
    FROM page_views
    WHERE timestamp >= ?
    `
	if err := db.Raw(onlineQuery, now.Add(-OnlineWindow)).Scan(&overview.Online).Error; err != nil {
		return nil, fmt.Errorf("error fetching online count: %w", err)
	}

	return overview, nil
}

// GetTodayCountsBySite returns today's page view and visitor counts
// grouped by site. Sites without traffic today are absent from the map.
func GetTodayCountsBySite(db *gorm.DB, now time.Time) (map[uint]SiteTodayCounts, error) {
	var rows []SiteTodayCounts

	query := `
    SELECT
        site_id,
        COUNT(*) as pv,
        COUNT(DISTINCT visitor_id) as uv
    FROM page_views
    WHERE DATE(timestamp) = DATE(?)
    GROUP BY site_id
    `
	if err := db.Raw(query, now).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching per-site totals: %w", err)
	}

	counts := make(map[uint]SiteTodayCounts, len(rows))
	for _, r := range rows {
		counts[r.SiteID] = r
	}
	return counts, nil
}
