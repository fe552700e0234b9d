// Package clock supplies the current time and calendar-day arithmetic used
// by the reconciliation passes.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// System is the wall clock
type System struct{}

// Now returns time.Now()
func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Useful for tests and dry runs.
type Fixed time.Time

// Now returns the fixed instant
func (f Fixed) Now() time.Time { return time.Time(f) }

// Func adapts a plain function to the Clock interface
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time { return f() }

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of calendar days from now to t, evaluated
// in now's location. It is negative when t is on an earlier day, zero when
// both fall on the same day, and never depends on the hour of day.
func DaysUntil(now, t time.Time) int {
	t = t.In(now.Location())
	// Compare dates in UTC so DST transitions cannot shorten a day
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// DayKey formats the calendar date of t, e.g. "2025-03-14"
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
