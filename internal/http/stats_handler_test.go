package http_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/sessions"
	"sitepulse/internal/stats"
	"sitepulse/internal/testsupport"
)

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}

func TestStatsAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")

	visitorA := testsupport.TestVisitorID("stats-a", site.ID)
	visitorB := testsupport.TestVisitorID("stats-b", site.ID)
	testsupport.CreatePageView(t, db, site.ID, visitorA, "/", timeNowUTC().Add(-time.Hour))
	testsupport.CreatePageView(t, db, site.ID, visitorA, "/pricing", timeNowUTC().Add(-2*time.Hour))
	testsupport.CreatePageView(t, db, site.ID, visitorB, "/", timeNowUTC().Add(-3*time.Hour))

	t.Run("default period report", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/stats/"+itoa(site.ID), "", cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report stats.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))

		assert.Equal(t, int64(3), report.Summary.PV)
		assert.Equal(t, int64(2), report.Summary.UV)
		assert.NotEmpty(t, report.Pages)
		assert.NotEmpty(t, report.Daily)
	})

	t.Run("explicit period parameter", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/stats/"+itoa(site.ID)+"?period=24h", "", cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report stats.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, int64(3), report.Summary.PV)
	})

	t.Run("unknown site yields an empty report", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/stats/9999", "", cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var report stats.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, int64(0), report.Summary.PV)
		assert.Empty(t, report.Pages)
	})

	t.Run("non-numeric site id yields 400", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "GET", "/api/stats/abc", "", cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRealtimeAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")
	testsupport.CreatePageView(t, db, site.ID, testsupport.TestVisitorID("rt", site.ID), "/now", timeNowUTC().Add(-5*time.Minute))

	resp, err := app.Test(authedRequest(t, "GET", "/api/realtime/"+itoa(site.ID), "", cookie), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var realtime stats.Realtime
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&realtime))

	assert.Equal(t, int64(1), realtime.Online)
	require.Len(t, realtime.Recent, 1)
	assert.Equal(t, "/now", realtime.Recent[0].Path)
	assert.NotEmpty(t, realtime.Recent[0].Visitor)
}

func TestOverviewAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")
	testsupport.CreateTestSite(db, "other.com")
	testsupport.CreatePageView(t, db, site.ID, testsupport.TestVisitorID("ov", site.ID), "/", timeNowUTC().Add(-time.Minute))

	resp, err := app.Test(authedRequest(t, "GET", "/api/overview", "", cookie), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var overview stats.Overview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&overview))

	assert.Equal(t, int64(1), overview.TodayPV)
	assert.Equal(t, int64(1), overview.TodayUV)
	assert.Equal(t, int64(2), overview.SiteCount)
	assert.Equal(t, int64(1), overview.Online)
}
