// Package aggregate holds the generic counting and windowing functions every
// module summary is built from. All functions are total: absent or malformed
// dates never count as due, overdue or expiring.
package aggregate

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/okian/wardwatch/internal/domain/calendar"
)

// Openable is any record with an open/closed state.
type Openable interface {
	IsOpen() bool
}

// Expiring is any record with an expiry date.
type Expiring interface {
	Expiry() string
}

// Count returns how many items satisfy pred.
func Count[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// OpenCount counts open items.
func OpenCount[T Openable](items []T) int {
	return Count(items, func(it T) bool { return it.IsOpen() })
}

// DueTodayCount counts open items due exactly today.
func DueTodayCount[T calendar.Tracked](items []T, today string) int {
	return Count(items, func(it T) bool { return it.IsOpen() && it.Due() == today })
}

// OverdueCount counts open items whose due date is before today.
func OverdueCount[T calendar.Tracked](items []T, today string) int {
	return Count(items, func(it T) bool { return calendar.IsLate(it, today) })
}

// IsExpiringWithin reports whether the expiry is at most n days away.
// Already-expired items satisfy it too.
func IsExpiringWithin(expiry string, now time.Time, n int) bool {
	d := calendar.DaysUntil(expiry, now)
	return !math.IsInf(d, 0) && d <= float64(n)
}

// ExpiringWithin counts items expiring within n days, expired ones included.
func ExpiringWithin[T Expiring](items []T, now time.Time, n int) int {
	return Count(items, func(it T) bool { return IsExpiringWithin(it.Expiry(), now, n) })
}

// ExpiredCount counts items whose expiry is already in the past.
func ExpiredCount[T Expiring](items []T, now time.Time) int {
	return Count(items, func(it T) bool {
		d := calendar.DaysUntil(it.Expiry(), now)
		return !math.IsInf(d, 0) && d < 0
	})
}

// FilterExpiring returns the items expiring within n days, soonest first.
func FilterExpiring[T Expiring](items []T, now time.Time, n int) []T {
	out := make([]T, 0)
	for _, it := range items {
		if IsExpiringWithin(it.Expiry(), now, n) {
			out = append(out, it)
		}
	}
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(calendar.DaysUntil(a.Expiry(), now), calendar.DaysUntil(b.Expiry(), now))
	})
	return out
}

// Contribution is one numeric value attributed to a grouping key.
type Contribution struct {
	Key   string
	Value float64
}

// Total is a grouped, rounded sum. It doubles as a chart label/value point.
type Total struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// TopN sums contributions per key, rounds each sum to one decimal and returns
// the n largest, ties broken by key ascending.
func TopN(contribs []Contribution, n int) []Total {
	if n <= 0 {
		return []Total{}
	}
	totals := GroupSum(contribs)
	slices.SortFunc(totals, func(a, b Total) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// GroupSum sums contributions per key in first-seen order, rounded to one decimal.
func GroupSum(contribs []Contribution) []Total {
	index := make(map[string]int)
	totals := make([]Total, 0)
	for _, c := range contribs {
		if math.IsNaN(c.Value) || math.IsInf(c.Value, 0) {
			continue
		}
		i, ok := index[c.Key]
		if !ok {
			i = len(totals)
			index[c.Key] = i
			totals = append(totals, Total{Key: c.Key})
		}
		totals[i].Value += c.Value
	}
	for i := range totals {
		totals[i].Value = RoundTenth(totals[i].Value)
	}
	return totals
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
