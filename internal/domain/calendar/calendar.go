// Package calendar holds the day arithmetic shared by every expiry and
// lateness check. Dates are "YYYY-MM-DD" strings (RFC 3339 timestamps are
// accepted too); anything unparsable behaves like an absent date.
package calendar

import (
	"math"
	"strings"
	"time"
)

// DayLayout is the fixed-width, zero-padded layout used for stored dates.
const DayLayout = "2006-01-02"

const day = 24 * time.Hour

// Clock returns the current instant. Services take one so tests can pin "now".
type Clock func() time.Time

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Parse reads a stored date. Date-only values are midnight UTC.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Valid reports whether s is a well-formed YYYY-MM-DD day.
func Valid(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

// DaysUntil is ceil((date - now) / 24h). Absent or malformed dates return +Inf
// so they never count as expiring or overdue.
func DaysUntil(date string, now time.Time) float64 {
	t, ok := Parse(date)
	if !ok {
		return math.Inf(1)
	}
	d := math.Ceil(float64(t.Sub(now)) / float64(day))
	switch {
	case math.IsNaN(d):
		return math.Inf(1)
	case d == 0:
		// ceil of a small negative fraction is -0.
		return 0
	}
	return d
}

// Today renders now as a calendar day in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DayLayout)
}

// Period selects a year and optionally a month (0 = whole year).
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

// Contains reports whether the stored date falls inside p.
func (p Period) Contains(date string) bool {
	t, ok := Parse(date)
	if !ok {
		return false
	}
	if t.Year() != p.Year {
		return false
	}
	return p.Month == 0 || int(t.Month()) == p.Month
}

// CurrentPeriod returns the year (and month when withMonth) of now in loc.
func CurrentPeriod(now time.Time, loc *time.Location, withMonth bool) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	p := Period{Year: local.Year()}
	if withMonth {
		p.Month = int(local.Month())
	}
	return p
}

// Tracked is an open-work item with an optional due date.
type Tracked interface {
	IsOpen() bool
	Due() string
}

// IsLate reports whether item is open and its well-formed due date is before
// today. Both sides are YYYY-MM-DD so string order is date order.
func IsLate(item Tracked, today string) bool {
	if !item.IsOpen() {
		return false
	}
	due := item.Due()
	if !Valid(due) {
		return false
	}
	return due < today
}
