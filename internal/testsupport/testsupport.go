package testsupport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	ctestsupport "github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitepulse/internal"
	"sitepulse/internal/config"
	"sitepulse/internal/pkg/geo"
	"sitepulse/internal/sessions"
	"sitepulse/internal/sites"
	"sitepulse/internal/tracking"
	"sitepulse/internal/visitors"
)

// SessionCookieName is the expected cookie name for session cookies in tests.
// This should match the pattern used in routes.go: cfg.AppName + "_session"
const SessionCookieName = "sitepulse_session"

// testDBCache caches test databases by test name to allow multiple calls
// within the same test to share the same database
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

// TestDBManager wraps cartridge's TestDBManager with sitepulse's interface
type TestDBManager struct {
	*ctestsupport.TestDBManager
}

// NewTestDBManager creates a TestDBManager that implements cartridge.DBManager
func NewTestDBManager(db *gorm.DB) *TestDBManager {
	return &TestDBManager{
		TestDBManager: ctestsupport.NewTestDBManager(db),
	}
}

// Ensure TestDBManager implements cartridge.DBManager
var _ cartridge.DBManager = (*TestDBManager)(nil)

// allModels returns all sitepulse models for migration
func allModels() []any {
	return []any{
		&sites.Site{},
		&tracking.PageView{},
		&tracking.Event{},
	}
}

// SetupTestDB creates a test database with all sitepulse models migrated.
// Uses a named in-memory database with cache=shared to allow multiple connections
// to share the same database within a test. Caches the database by test name
// so multiple calls within the same test return the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Use root test name for caching to handle closure issues where
	// setup functions capture the outer t while t.Run has subtest t
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	// Create a unique named in-memory database for each test
	// cache=shared allows multiple connections to the same database
	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestDBManager creates a test DB manager using cartridge's testsupport
func SetupTestDBManager(t *testing.T) (*TestDBManager, *slog.Logger) {
	cfg := config.GetConfig()

	// SAFETY CHECK: Ensure we're in test environment
	if cfg.Environment != config.Test {
		t.Fatalf("CRITICAL: Tests must run in test environment! Current: %s. Set SITEPULSE_ENV=test", cfg.Environment)
	}

	db := SetupTestDB(t)
	logger := GetLogger()
	dbManager := NewTestDBManager(db)

	return dbManager, logger
}

// SetupTestDBManagerWithSite creates a test database manager with a test site
func SetupTestDBManagerWithSite(t *testing.T, domain string) (*TestDBManager, *slog.Logger, sites.Site) {
	dbManager, logger := SetupTestDBManager(t)
	site := CreateTestSite(dbManager.GetConnection(), domain)
	return dbManager, logger, site
}

// CleanAllTables clears all non-system tables in the database
func CleanAllTables(db *gorm.DB) {
	var tableNames []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tableNames)

	var tables []string
	for _, name := range tableNames {
		if name != "migrations" && name != "schema_migrations" {
			tables = append(tables, name)
		}
	}

	if len(tables) == 0 {
		return
	}

	db.Exec("PRAGMA foreign_keys = OFF")
	defer db.Exec("PRAGMA foreign_keys = ON")

	db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			tx.Exec("DELETE FROM " + table)
			tx.Exec("DELETE FROM sqlite_sequence WHERE name=?", table)
		}
		return nil
	})
}

// CreateTestSite creates a test site in the database
func CreateTestSite(db *gorm.DB, domain string) sites.Site {
	var site sites.Site
	if db.Where("domain = ?", domain).First(&site).Error != nil {
		site = sites.Site{Name: domain, Domain: domain}
		if err := sites.CreateSite(db, &site); err != nil {
			panic(fmt.Sprintf("testsupport: failed to create test site: %v", err))
		}
	}
	return site
}

// CreatePageView inserts a page view with explicit visitor and timestamp
func CreatePageView(t *testing.T, db *gorm.DB, siteID uint, visitorID, path string, timestamp time.Time) {
	t.Helper()

	view := tracking.PageView{
		SiteID:    siteID,
		VisitorID: visitorID,
		URL:       "https://example.com" + path,
		Path:      path,
		Browser:   "Chrome",
		OS:        "Windows",
		Device:    "Desktop",
		Timestamp: timestamp,
	}
	if err := db.Create(&view).Error; err != nil {
		t.Fatalf("testsupport: failed to create page view: %v", err)
	}
}

// TestVisitorID returns a deterministic visitor fingerprint for fixtures
func TestVisitorID(seed string, siteID uint) string {
	return visitors.BuildVisitorID("203.0.113.1", seed, siteID)
}

// GetLogger returns a test logger
func GetLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(handler)
}

// CreateMinimalTestApp creates a fiber app with all routes mounted,
// backed by the given test database and session store. Geo lookups are
// disabled so tests never leave the process.
func CreateMinimalTestApp(t *testing.T, db *gorm.DB, store *sessions.Store) *fiber.App {
	t.Helper()

	dbManager := NewTestDBManager(db)
	appConfig := config.GetConfig()
	appConfig.Environment = config.Test

	cfg := cartridge.DefaultServerConfig()
	cfg.Config = appConfig
	cfg.Logger = GetLogger()
	cfg.DBManager = dbManager
	// Enable SecFetchSite validation in tests to match production behavior
	// This blocks requests without Sec-Fetch-Site header (server-to-server requests)
	cfg.EnableSecFetchSite = true
	cfg.SecFetchSiteAllowedValues = []string{"cross-site", "same-site", "same-origin"}

	srv, err := cartridge.NewServer(cfg)
	require.NoError(t, err)

	internal.MountAppRoutes(store, geo.NoopResolver{})(srv)
	return srv.App()
}

// LoginTestAdmin performs a login request against the test app and
// returns the session cookie value.
func LoginTestAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()

	cfg := config.GetConfig()
	payload, err := json.Marshal(map[string]string{
		"username": cfg.AdminUser,
		"password": cfg.AdminPassword,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	resp, err := app.Test(req, 30000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "test admin login must succeed")

	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	t.Fatal("login response did not set a session cookie")
	return ""
}
