package visitors_test

import (
	"testing"
	"time"

	"sitepulse/internal/visitors"

	"github.com/stretchr/testify/assert"
)

func TestBuildVisitorID(t *testing.T) {
	ip := "192.168.1.1"
	userAgent := "Mozilla/5.0"
	siteID := uint(1)

	t.Run("generates consistent ID for same inputs within same day", func(t *testing.T) {
		id1 := visitors.BuildVisitorID(ip, userAgent, siteID)
		id2 := visitors.BuildVisitorID(ip, userAgent, siteID)

		assert.Equal(t, id1, id2, "Same inputs should generate same ID")
		assert.NotEmpty(t, id1, "ID should not be empty")
		assert.Len(t, id1, visitors.FingerprintLength, "Fingerprint should be a fixed-length digest prefix")
	})

	t.Run("generates different IDs for different IPs", func(t *testing.T) {
		id1 := visitors.BuildVisitorID(ip, userAgent, siteID)
		id2 := visitors.BuildVisitorID("192.168.1.2", userAgent, siteID)

		assert.NotEqual(t, id1, id2, "Different IP should generate different ID")
	})

	t.Run("generates different IDs for different user agents", func(t *testing.T) {
		id1 := visitors.BuildVisitorID(ip, userAgent, siteID)
		id2 := visitors.BuildVisitorID(ip, "Different Agent", siteID)

		assert.NotEqual(t, id1, id2, "Different user agent should generate different ID")
	})

	t.Run("generates different IDs for different sites", func(t *testing.T) {
		id1 := visitors.BuildVisitorID(ip, userAgent, siteID)
		id2 := visitors.BuildVisitorID(ip, userAgent, uint(2))

		assert.NotEqual(t, id1, id2, "Different site should generate different ID")
	})

	t.Run("accepts empty inputs without failing", func(t *testing.T) {
		id := visitors.BuildVisitorID("", "", 0)

		assert.Len(t, id, visitors.FingerprintLength)
	})

	t.Run("IDs are stable within the same day", func(t *testing.T) {
		id1 := visitors.BuildVisitorID(ip, userAgent, siteID)
		time.Sleep(10 * time.Millisecond)
		id2 := visitors.BuildVisitorID(ip, userAgent, siteID)

		assert.Equal(t, id1, id2, "IDs should be stable within the same day")
	})
}

func TestVisitorAlias(t *testing.T) {
	alias := visitors.VisitorAlias("abcdef0123456789")

	assert.NotEmpty(t, alias)
	assert.Equal(t, alias, visitors.VisitorAlias("abcdef0123456789"), "Alias should be deterministic")
	assert.NotEqual(t, alias, visitors.VisitorAlias("fedcba9876543210"))
}
