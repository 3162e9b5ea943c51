package visitors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The fingerprint must rotate at the local day boundary so visitors cannot
// be correlated across calendar days.
func TestFingerprintRotatesAcrossDays(t *testing.T) {
	ip := "203.0.113.9"
	userAgent := "Mozilla/5.0"
	siteID := uint(7)

	day := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)
	nextDay := day.Add(2 * time.Minute)

	id1 := buildVisitorIDForDay(ip, userAgent, siteID, day)
	id2 := buildVisitorIDForDay(ip, userAgent, siteID, nextDay)

	assert.NotEqual(t, id1, id2, "Fingerprint should rotate when the calendar day changes")

	sameDayLater := day.Add(-5 * time.Hour)
	id3 := buildVisitorIDForDay(ip, userAgent, siteID, sameDayLater)
	assert.Equal(t, id1, id3, "Fingerprint should be stable within one calendar day")
}
