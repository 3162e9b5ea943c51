package stats

import "time"

// periodDays maps the supported report periods to a day count.
var periodDays = map[string]int{
	"24h": 1,
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// DefaultPeriod is used when the requested period is missing or unknown.
const DefaultPeriod = "7d"

// ResolvePeriod returns the start of the reporting window for a period
// string. Unknown periods fall back to the default seven day window.
func ResolvePeriod(period string, now time.Time) time.Time {
	days, ok := periodDays[period]
	if !ok {
		days = periodDays[DefaultPeriod]
	}
	return now.AddDate(0, 0, -days)
}
