// Package localdate provides timezone-normalized calendar arithmetic.
//
// Every derived statistic in the application compares calendar dates in the
// user's own timezone, never UTC and never a server-supplied offset. A Date is
// a naive local calendar day; all arithmetic goes through time.Date so month
// rollover and leap years follow the Gregorian calendar.
package localdate

import (
	"fmt"
	"time"
)

// KeyLayout is the canonical YYYY-MM-DD form used for store queries and
// comparisons. Two moments on the same local calendar day always produce the
// same key.
const KeyLayout = "2006-01-02"

// Date is a calendar date without a time component, interpreted in the
// timezone it was resolved from. Equality of two Dates is same-local-day
// equality.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// FromTime projects an instant onto the local calendar of loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	return Date{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// Today resolves the current local calendar day. Callers computing a snapshot
// must resolve today once and thread the same value through every comparison
// of that pass.
func Today(loc *time.Location) Date {
	return FromTime(time.Now(), loc)
}

// Parse converts a YYYY-MM-DD key back into a Date. Keys that do not parse
// exactly (wrong layout, impossible dates like 2024-02-30) are rejected.
func Parse(key string) (Date, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Key formats the date as its canonical YYYY-MM-DD key.
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// midnight places the date at 00:00:00 UTC. Only used internally for
// arithmetic; UTC keeps the math free of DST discontinuities.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days after d (or before, for negative n).
func (d Date) AddDays(n int) Date {
	t := d.midnight().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.midnight().After(other.midnight())
}

// DaysBetween returns the absolute number of calendar days separating a and b.
// It is symmetric and zero for the same day.
func DaysBetween(a, b Date) int {
	diff := b.midnight().Sub(a.midnight())
	days := int(diff.Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// EndOfMonth returns the last day of d's month. Day zero of the following
// month normalizes to it, which makes leap February come out right.
func (d Date) EndOfMonth() Date {
	t := time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysInMonth returns the number of days in d's month.
func (d Date) DaysInMonth() int {
	return d.EndOfMonth().Day
}

// DayOfMonth returns d's day number, 1..DaysInMonth.
func (d Date) DayOfMonth() int {
	return d.Day
}

// MillisUntilNextMidnight returns how many milliseconds remain until the next
// local midnight after now. The result is clamped to zero so DST transitions
// or clock skew can never yield a negative countdown; zero is returned only at
// the midnight instant itself.
func MillisUntilNextMidnight(now time.Time, loc *time.Location) int64 {
	if loc == nil {
		loc = time.Local
	}
	lt := now.In(loc)
	dayStart := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	if lt.Equal(dayStart) {
		return 0
	}
	next := time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
	ms := next.Sub(lt).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// LoadLocation resolves the first IANA timezone name in the chain that loads,
// finally UTC. The caller's zone always wins when it resolves; a server-side
// offset is never substituted for it, and an unloadable name anywhere in the
// chain falls through to the next candidate instead of ending the search.
func LoadLocation(name string, fallbacks ...string) *time.Location {
	for _, candidate := range append([]string{name}, fallbacks...) {
		if candidate == "" {
			continue
		}
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc
		}
	}
	return time.UTC
}
