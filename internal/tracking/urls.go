package tracking

import (
	"net/url"
	"strings"
)

// ExtractDomain returns the lowercased hostname of a referrer URL.
// Empty or unparseable referrers yield an empty string, never an error:
// a bad referrer must not block collection.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}

// ExtractPath returns the path component of a URL, defaulting to "/"
// when the URL is empty, unparseable, or has no path.
func ExtractPath(rawURL string) string {
	if rawURL == "" {
		return "/"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "/"
	}
	if parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}
