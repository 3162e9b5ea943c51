// Package useragent classifies raw User-Agent strings into the browser,
// operating system and device families used by the reporting queries.
package useragent

import (
	"strings"

	ua "github.com/mileusna/useragent"
)

// Device classes stored on every page view.
const (
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceDesktop = "Desktop"
	DeviceBot     = "Bot"
)

// Unknown is the sentinel family for unparsable agents.
const Unknown = "Unknown"

// Classification is the parsed form of a User-Agent header.
type Classification struct {
	Browser string
	OS      string
	Device  string
	Bot     bool
}

// Classify parses a User-Agent string. Malformed or empty input never fails;
// it classifies to Unknown families and the Desktop device class.
func Classify(userAgent string) Classification {
	parsed := ua.Parse(userAgent)

	c := Classification{
		Browser: parsed.Name,
		OS:      parsed.OS,
		Bot:     parsed.Bot,
	}

	if strings.TrimSpace(c.Browser) == "" {
		c.Browser = Unknown
	}
	if strings.TrimSpace(c.OS) == "" {
		c.OS = Unknown
	}

	// Mobile wins over tablet; anything unrecognized counts as desktop.
	switch {
	case parsed.Bot:
		c.Device = DeviceBot
	case parsed.Mobile:
		c.Device = DeviceMobile
	case parsed.Tablet:
		c.Device = DeviceTablet
	default:
		c.Device = DeviceDesktop
	}

	return c
}
