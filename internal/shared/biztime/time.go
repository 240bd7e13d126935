// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone only decides
// calendar boundaries such as the start of a revenue month.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "UTC"

var (
	mu          sync.RWMutex
	bizLocation *time.Location
)

// Init sets the business timezone. An empty tz selects DefaultTimezone.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load business timezone %q: %w", tz, err)
	}
	mu.Lock()
	bizLocation = loc
	mu.Unlock()
	return nil
}

// Location returns the business timezone, UTC until Init is called.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	if bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns midnight of t's business day, in UTC.
func StartOfDayUTC(t time.Time) time.Time {
	loc := Location()
	b := t.In(loc)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc).UTC()
}

// StartOfMonthUTC returns the first instant of t's business month, in UTC.
func StartOfMonthUTC(t time.Time) time.Time {
	loc := Location()
	b := t.In(loc)
	return time.Date(b.Year(), b.Month(), 1, 0, 0, 0, 0, loc).UTC()
}

// AddMonthsUTC moves a month boundary by n business months.
func AddMonthsUTC(monthStart time.Time, n int) time.Time {
	loc := Location()
	b := monthStart.In(loc)
	return time.Date(b.Year(), b.Month()+time.Month(n), 1, 0, 0, 0, 0, loc).UTC()
}

// MonthKey formats t as YYYY-MM in the business timezone.
func MonthKey(t time.Time) string {
	return t.In(Location()).Format("2006-01")
}
