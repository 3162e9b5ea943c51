package tracking

import "time"

// PageView represents a single enriched page view in the main database.
type PageView struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	SiteID         uint   `gorm:"index:idx_site_timestamp;not null"`
	VisitorID      string `gorm:"index;size:16;not null"`
	URL            string `gorm:"not null"`
	Path           string `gorm:"index;not null"`
	Title          string
	Referrer       string
	ReferrerDomain string `gorm:"index"`
	Browser        string
	OS             string
	Device         string
	Country        string `gorm:"index"`
	City           string
	ScreenWidth    int
	ScreenHeight   int
	Language       string
	Timestamp      time.Time `gorm:"index:idx_site_timestamp;not null"`
	CreatedAt      time.Time
}

// Event represents a named custom event with an opaque payload.
type Event struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SiteID    uint   `gorm:"index:idx_event_site_timestamp;not null"`
	VisitorID string `gorm:"index;size:16"`
	Name      string `gorm:"index;not null"`
	Data      string `gorm:"type:text"`
	URL       string
	Path      string
	Timestamp time.Time `gorm:"index:idx_event_site_timestamp;not null"`
	CreatedAt time.Time
}
