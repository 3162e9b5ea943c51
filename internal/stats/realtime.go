package stats

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"sitepulse/internal/visitors"
)

// OnlineWindow is how far back a visitor still counts as online.
const OnlineWindow = 30 * time.Minute

// recentViewLimit caps the realtime activity feed.
const recentViewLimit = 20

// RecentView is one entry of the realtime activity feed.
type RecentView struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Country   string    `json:"country"`
	Device    string    `json:"device"`
	Visitor   string    `json:"visitor"`
	Timestamp time.Time `json:"timestamp"`
}

// Realtime is the live snapshot for one site.
type Realtime struct {
	Online int64        `json:"online"`
	Recent []RecentView `json:"recent"`
}

// GetOnlineCount returns the distinct visitors seen within the online
// window ending at now.
func GetOnlineCount(db *gorm.DB, siteID uint, now time.Time) (int64, error) {
	var online int64

	query := `
    SELECT COUNT(DISTINCT visitor_id) as online
    FROM page_views
    WHERE site_id = ? AND timestamp >= ?
    `

	if err := db.Raw(query, siteID, now.Add(-OnlineWindow)).Scan(&online).Error; err != nil {
		return 0, fmt.Errorf("error fetching online count: %w", err)
	}
	return online, nil
}

// GetRealtime returns the online count and the newest page views of a
// site, each annotated with a readable visitor alias.
func GetRealtime(db *gorm.DB, siteID uint, now time.Time) (*Realtime, error) {
	online, err := GetOnlineCount(db, siteID, now)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Path      string
		Title     string
		Country   string
		Device    string
		VisitorID string
		Timestamp time.Time
	}

	query := `
    SELECT path, title, country, device, visitor_id, timestamp
    FROM page_views
    WHERE site_id = ?
    ORDER BY timestamp DESC
    LIMIT ?
    `

	if err := db.Raw(query, siteID, recentViewLimit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching recent views: %w", err)
	}

	recent := make([]RecentView, len(rows))
	for i, r := range rows {
		recent[i] = RecentView{
			Path:      r.Path,
			Title:     r.Title,
			Country:   r.Country,
			Device:    r.Device,
			Visitor:   visitors.VisitorAlias(r.VisitorID),
			Timestamp: r.Timestamp,
		}
	}

	return &Realtime{Online: online, Recent: recent}, nil
}
