package tracking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sitepulse/internal/tracking"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		expected string
	}{
		{
			name:     "Full referrer URL",
			rawURL:   "https://www.google.com/search?q=analytics",
			expected: "www.google.com",
		},
		{
			name:     "Uppercase host is lowercased",
			rawURL:   "https://News.Ycombinator.COM/item?id=1",
			expected: "news.ycombinator.com",
		},
		{
			name:     "URL with port",
			rawURL:   "http://localhost:3000/docs",
			expected: "localhost",
		},
		{
			name:     "Empty referrer",
			rawURL:   "",
			expected: "",
		},
		{
			name:     "Unparseable referrer",
			rawURL:   "http://[::1]:namedport",
			expected: "",
		},
		{
			name:     "Relative URL has no host",
			rawURL:   "/internal/page",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tracking.ExtractDomain(tt.rawURL))
		})
	}
}

func TestExtractPath(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		expected string
	}{
		{
			name:     "Plain page URL",
			rawURL:   "https://example.com/pricing",
			expected: "/pricing",
		},
		{
			name:     "Query string is dropped",
			rawURL:   "https://example.com/search?q=go",
			expected: "/search",
		},
		{
			name:     "Root URL without trailing slash",
			rawURL:   "https://example.com",
			expected: "/",
		},
		{
			name:     "Empty URL",
			rawURL:   "",
			expected: "/",
		},
		{
			name:     "Unparseable URL",
			rawURL:   "http://[::1]:namedport",
			expected: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tracking.ExtractPath(tt.rawURL))
		})
	}
}
