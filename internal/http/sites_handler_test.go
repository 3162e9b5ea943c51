package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sitepulse/internal/sessions"
	"sitepulse/internal/sites"
	"sitepulse/internal/testsupport"
)

// authedRequest builds a request carrying the admin session cookie
func authedRequest(t *testing.T, method, path, body, cookie string) *http.Request {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Sec-Fetch-Site", "same-origin") // Required for browser-only validation
	req.AddCookie(&http.Cookie{Name: testsupport.SessionCookieName, Value: cookie})
	return req
}

func TestSitesCreateAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	t.Run("creates a site and returns its token", func(t *testing.T) {
		body := `{"name":"Example","domain":"example.com","group_name":"marketing","notes":"landing"}`
		resp, err := app.Test(authedRequest(t, "POST", "/api/sites", body, cookie), 30000)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var created sites.Site
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "example.com", created.Domain)
		assert.NotEmpty(t, created.Token)
		assert.Equal(t, "marketing", created.GroupName)
	})

	t.Run("duplicate domain yields 409", func(t *testing.T) {
		body := `{"name":"Copy","domain":"example.com"}`
		resp, err := app.Test(authedRequest(t, "POST", "/api/sites", body, cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("missing domain yields 400", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "POST", "/api/sites", `{"name":"No Domain"}`, cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSitesIndexAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")
	testsupport.CreateTestSite(db, "other.com")

	// Traffic for today's counters
	visitor := testsupport.TestVisitorID("list-test", site.ID)
	testsupport.CreatePageView(t, db, site.ID, visitor, "/", timeNowUTC())
	testsupport.CreatePageView(t, db, site.ID, visitor, "/pricing", timeNowUTC())

	resp, err := app.Test(authedRequest(t, "GET", "/api/sites", "", cookie), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		sites.Site
		TodayPV int64 `json:"today_pv"`
		TodayUV int64 `json:"today_uv"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 2)

	byDomain := make(map[string]int64)
	for _, item := range items {
		byDomain[item.Domain] = item.TodayPV
	}
	assert.Equal(t, int64(2), byDomain["example.com"])
	assert.Equal(t, int64(0), byDomain["other.com"])
}

func TestSiteUpdateAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "PUT", "/api/sites/"+itoa(site.ID), `{"name":"Renamed"}`, cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		reloaded, err := sites.GetSiteByID(db, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", reloaded.Name)
		assert.Equal(t, "example.com", reloaded.Domain)
		assert.Equal(t, site.Token, reloaded.Token)
	})

	t.Run("unknown site yields 404", func(t *testing.T) {
		resp, err := app.Test(authedRequest(t, "PUT", "/api/sites/9999", `{"name":"Ghost"}`, cookie), 30000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestSiteDeleteAction(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	app := testsupport.CreateMinimalTestApp(t, db, sessions.NewStore(0, nil))
	cookie := testsupport.LoginTestAdmin(t, app)

	site := testsupport.CreateTestSite(db, "example.com")
	testsupport.CreatePageView(t, db, site.ID, testsupport.TestVisitorID("del", site.ID), "/", timeNowUTC())

	resp, err := app.Test(authedRequest(t, "DELETE", "/api/sites/"+itoa(site.ID), "", cookie), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = sites.GetSiteByID(db, site.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	resp, err = app.Test(authedRequest(t, "DELETE", "/api/sites/"+itoa(site.ID), "", cookie), 30000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "second delete finds nothing")
}
