package stats

import "time"

// TimeProvider abstracts the current time so window boundaries can be
// pinned in tests.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the system clock in UTC.
type DefaultTimeProvider struct{}

func (p *DefaultTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
