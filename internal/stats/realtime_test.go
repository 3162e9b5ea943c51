package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/stats"
	"sitepulse/internal/testsupport"
)

func TestGetOnlineCount(t *testing.T) {
	dbManager, _, site := testsupport.SetupTestDBManagerWithSite(t, "example.com")
	db := dbManager.GetConnection()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mustCreate(t, db,
		view(site.ID, "f1f1f1f1f1f1f1f1", "/", now.Add(-10*time.Minute)),
		view(site.ID, "f1f1f1f1f1f1f1f1", "/pricing", now.Add(-5*time.Minute)),
		view(site.ID, "f2f2f2f2f2f2f2f2", "/", now.Add(-40*time.Minute)),
	)

	online, err := stats.GetOnlineCount(db, site.ID, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), online, "only visitors inside the half hour window count")
}

func TestGetRealtime(t *testing.T) {
	dbManager, _, site := testsupport.SetupTestDBManagerWithSite(t, "example.com")
	db := dbManager.GetConnection()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// 25 views, newest last
	for i := 0; i < 25; i++ {
		ts := now.Add(time.Duration(-25+i) * time.Minute)
		testsupport.CreatePageView(t, db, site.ID, "f1f1f1f1f1f1f1f1", "/", ts)
	}
	latest := view(site.ID, "f2f2f2f2f2f2f2f2", "/latest", now)
	latest.Title = "Latest"
	mustCreate(t, db, latest)

	realtime, err := stats.GetRealtime(db, site.ID, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), realtime.Online)
	require.Len(t, realtime.Recent, 20, "feed is capped at twenty entries")
	assert.Equal(t, "/latest", realtime.Recent[0].Path, "newest first")
	assert.Equal(t, "Latest", realtime.Recent[0].Title)
	assert.NotEmpty(t, realtime.Recent[0].Visitor, "entries carry a readable alias")
	assert.NotContains(t, realtime.Recent[0].Visitor, "f2f2", "alias hides the fingerprint")
}

func TestGetOverview(t *testing.T) {
	dbManager, _, site := testsupport.SetupTestDBManagerWithSite(t, "example.com")
	db := dbManager.GetConnection()
	other := testsupport.CreateTestSite(db, "other.com")

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mustCreate(t, db,
		view(site.ID, "f1f1f1f1f1f1f1f1", "/", now.Add(-10*time.Minute)),
		view(other.ID, "f2f2f2f2f2f2f2f2", "/", now.Add(-2*time.Hour)),
		// Yesterday's view is outside today's totals but site still counts
		view(other.ID, "f3f3f3f3f3f3f3f3", "/", now.AddDate(0, 0, -1)),
	)

	overview, err := stats.GetOverview(db, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.TodayPV)
	assert.Equal(t, int64(2), overview.TodayUV)
	assert.Equal(t, int64(2), overview.SiteCount)
	assert.Equal(t, int64(1), overview.Online)
}

func TestGetTodayCountsBySite(t *testing.T) {
	dbManager, _, site := testsupport.SetupTestDBManagerWithSite(t, "example.com")
	db := dbManager.GetConnection()
	quiet := testsupport.CreateTestSite(db, "quiet.com")

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mustCreate(t, db,
		view(site.ID, "f1f1f1f1f1f1f1f1", "/", now.Add(-1*time.Hour)),
		view(site.ID, "f1f1f1f1f1f1f1f1", "/pricing", now.Add(-2*time.Hour)),
	)

	counts, err := stats.GetTodayCountsBySite(db, now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[site.ID].PV)
	assert.Equal(t, int64(1), counts[site.ID].UV)

	_, ok := counts[quiet.ID]
	assert.False(t, ok, "sites without traffic today are absent")
}
