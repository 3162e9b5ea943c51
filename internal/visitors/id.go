package visitors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// FingerprintLength is the number of hex characters kept from the digest.
// Truncation keeps storage compact; the fingerprint only needs to support
// approximate unique-visitor counting, not identity.
const FingerprintLength = 16

// BuildVisitorID derives a privacy-preserving visitor fingerprint.
// The fingerprint rotates at local midnight, ensuring the same visitor
// cannot be tracked across calendar days. IP addresses are never stored -
// only used in hashing.
func BuildVisitorID(ip, userAgent string, siteID uint) string {
	return buildVisitorIDForDay(ip, userAgent, siteID, time.Now())
}

// buildVisitorIDForDay computes the fingerprint for a given point in time.
// Kept separate so tests can verify the day-boundary rotation.
func buildVisitorIDForDay(ip, userAgent string, siteID uint, at time.Time) string {
	day := at.Format("2006-01-02")
	data := fmt.Sprintf("%s%s%d%s", ip, userAgent, siteID, day)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:FingerprintLength]
}
