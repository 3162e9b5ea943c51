package sites_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitepulse/internal/sites"
	"sitepulse/internal/testsupport"
	"sitepulse/internal/tracking"
)

func TestCreateSite(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	t.Run("Assigns a token and defaults name to domain", func(t *testing.T) {
		site := sites.Site{Domain: "example.com"}
		err := sites.CreateSite(db, &site)

		require.NoError(t, err)
		assert.NotZero(t, site.ID)
		assert.Equal(t, "example.com", site.Name)
		assert.NotEmpty(t, site.Token)
		assert.NotContains(t, site.Token, "+")
		assert.NotContains(t, site.Token, "/")
		assert.NotContains(t, site.Token, "=")
	})

	t.Run("Rejects duplicate domain", func(t *testing.T) {
		dup := sites.Site{Name: "Copy", Domain: "example.com"}
		err := sites.CreateSite(db, &dup)

		require.Error(t, err)
		var dupErr *sites.DuplicateDomainError
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "example.com", dupErr.Domain)
	})

	t.Run("Tokens are unique across sites", func(t *testing.T) {
		a := sites.Site{Domain: "a.example.org"}
		b := sites.Site{Domain: "b.example.org"}
		require.NoError(t, sites.CreateSite(db, &a))
		require.NoError(t, sites.CreateSite(db, &b))

		assert.NotEqual(t, a.Token, b.Token)
	})
}

func TestGetSiteByToken(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	site := testsupport.CreateTestSite(db, "example.com")

	t.Run("Returns the site for a known token", func(t *testing.T) {
		found, err := sites.GetSiteByToken(db, site.Token)

		require.NoError(t, err)
		assert.Equal(t, site.ID, found.ID)
		assert.Equal(t, "example.com", found.Domain)
	})

	t.Run("Unknown token yields SiteNotFoundError", func(t *testing.T) {
		found, err := sites.GetSiteByToken(db, "nope")

		require.Error(t, err)
		assert.Nil(t, found)

		var notFound *sites.SiteNotFoundError
		assert.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.Token)
	})
}

func TestGetAllSitesOrdering(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	require.NoError(t, sites.CreateSite(db, &sites.Site{Name: "Zeta", Domain: "zeta.com", GroupName: "alpha"}))
	require.NoError(t, sites.CreateSite(db, &sites.Site{Name: "Beta", Domain: "beta.com", GroupName: "beta"}))
	require.NoError(t, sites.CreateSite(db, &sites.Site{Name: "Alpha", Domain: "alpha.com", GroupName: "alpha"}))

	all, err := sites.GetAllSites(db)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Zeta", all[1].Name)
	assert.Equal(t, "Beta", all[2].Name)
}

func TestUpdateSite(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	site := testsupport.CreateTestSite(db, "example.com")
	site.Name = "Renamed"
	site.GroupName = "marketing"
	site.Notes = "landing pages"

	require.NoError(t, sites.UpdateSite(db, &site))

	reloaded, err := sites.GetSiteByID(db, site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Name)
	assert.Equal(t, "marketing", reloaded.GroupName)
	assert.Equal(t, "landing pages", reloaded.Notes)
	assert.Equal(t, site.Token, reloaded.Token)
}

func TestDeleteSiteCascades(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	site := testsupport.CreateTestSite(db, "example.com")
	other := testsupport.CreateTestSite(db, "other.com")

	now := time.Now().UTC()
	testsupport.CreatePageView(t, db, site.ID, "f1f1f1f1f1f1f1f1", "/", now)
	testsupport.CreatePageView(t, db, other.ID, "f2f2f2f2f2f2f2f2", "/", now)
	require.NoError(t, db.Create(&tracking.Event{SiteID: site.ID, Name: "signup", Timestamp: now}).Error)

	require.NoError(t, sites.DeleteSite(db, site.ID))

	var viewCount, eventCount, otherViews int64
	db.Model(&tracking.PageView{}).Where("site_id = ?", site.ID).Count(&viewCount)
	db.Model(&tracking.Event{}).Where("site_id = ?", site.ID).Count(&eventCount)
	db.Model(&tracking.PageView{}).Where("site_id = ?", other.ID).Count(&otherViews)

	assert.Equal(t, int64(0), viewCount)
	assert.Equal(t, int64(0), eventCount)
	assert.Equal(t, int64(1), otherViews, "other sites keep their traffic")

	_, err := sites.GetSiteByID(db, site.ID)
	assert.Error(t, err)
}

func TestDeleteSiteNotFound(t *testing.T) {
	dbManager, _ := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	err := sites.DeleteSite(db, 9999)
	assert.Error(t, err)
}
