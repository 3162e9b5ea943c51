package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitepulse/internal/stats"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period   string
		expected time.Time
	}{
		{"24h", now.AddDate(0, 0, -1)},
		{"7d", now.AddDate(0, 0, -7)},
		{"30d", now.AddDate(0, 0, -30)},
		{"90d", now.AddDate(0, 0, -90)},
		{"", now.AddDate(0, 0, -7)},
		{"1y", now.AddDate(0, 0, -7)},
		{"banana", now.AddDate(0, 0, -7)},
	}

	for _, tt := range tests {
		t.Run("period "+tt.period, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.ResolvePeriod(tt.period, now))
		})
	}
}
