// Package adherence computes streak and consistency statistics over a user's
// daily check-in history. The engine is pure: it consumes already-fetched
// date keys, performs no I/O, and returns deterministic zero-valued output for
// empty input instead of erroring.
package adherence

import (
	"math"
	"sort"
	"time"

	"github.com/levisilvaaa/dailydose/localdate"
)

// consistencyWindowDays is the rolling window for the consistency percentage,
// independent of calendar-month boundaries.
const consistencyWindowDays = 30

// DayState classifies one calendar day of a displayed month.
type DayState string

const (
	StateCompleted DayState = "completed"
	StateMissed    DayState = "missed"
	StateFuture    DayState = "future"
)

// DayStatus is the per-day entry of a month view, ordered ascending by day.
type DayStatus struct {
	Day    int      `json:"day"`
	Date   string   `json:"date"`
	Status DayState `json:"status"`
}

// Snapshot aggregates a user's whole check-in history relative to one
// canonical "today".
type Snapshot struct {
	TotalDays        int     `json:"total_days"`
	CurrentStreak    int     `json:"current_streak"`
	Consistency30    int     `json:"consistency_30"`
	DailyAverage     float64 `json:"daily_average"`
	MonthlyCompleted int     `json:"monthly_completed"`
	MonthlyPending   int     `json:"monthly_pending"`
	MonthlyRemaining int     `json:"monthly_remaining"`
}

// MonthSummary holds the aggregate counters for one calendar month.
type MonthSummary struct {
	Completed   int `json:"completed"`
	Pending     int `json:"pending"`
	Remaining   int `json:"remaining"`
	DaysElapsed int `json:"days_elapsed"`
	DaysInMonth int `json:"days_in_month"`
}

// DaySet is the set of local calendar days that have a check-in.
type DaySet map[localdate.Date]struct{}

// NewDaySet parses raw date keys into a DaySet. Keys that fail to parse are
// excluded from every computation and returned so the caller can log the data
// integrity warning; one bad row never aborts or corrupts the whole pass.
func NewDaySet(keys []string) (DaySet, []string) {
	set := make(DaySet, len(keys))
	var rejected []string
	for _, k := range keys {
		d, err := localdate.Parse(k)
		if err != nil {
			rejected = append(rejected, k)
			continue
		}
		set[d] = struct{}{}
	}
	return set, rejected
}

// Contains reports whether the set has a check-in on d.
func (s DaySet) Contains(d localdate.Date) bool {
	_, ok := s[d]
	return ok
}

// earliest returns the oldest day in the set; ok is false for an empty set.
func (s DaySet) earliest() (localdate.Date, bool) {
	var min localdate.Date
	found := false
	for d := range s {
		if !found || d.Before(min) {
			min = d
			found = true
		}
	}
	return min, found
}

// CurrentStreak counts consecutive completed days walking backward from today.
// A today without a check-in does not break the chain: the streak then ends at
// yesterday. This grace period is deliberate product behavior, not an
// accident of iteration order.
func CurrentStreak(set DaySet, today localdate.Date) int {
	candidate := today
	if !set.Contains(candidate) {
		candidate = candidate.AddDays(-1)
	}
	streak := 0
	for set.Contains(candidate) {
		streak++
		candidate = candidate.AddDays(-1)
	}
	return streak
}

// Consistency30 is the percentage of the inclusive window
// [today-29, today] that has a check-in, rounded to the nearest integer.
func Consistency30(set DaySet, today localdate.Date) int {
	windowStart := today.AddDays(-(consistencyWindowDays - 1))
	count := 0
	for d := range set {
		if !d.Before(windowStart) && !d.After(today) {
			count++
		}
	}
	return int(math.Round(float64(count) / consistencyWindowDays * 100))
}

// DailyAverage is total check-ins divided by the days elapsed since the
// earliest one, with a minimum divisor of one, rounded to a single decimal.
func DailyAverage(set DaySet, today localdate.Date) float64 {
	first, ok := set.earliest()
	if !ok {
		return 0
	}
	elapsed := localdate.DaysBetween(first, today)
	if elapsed < 1 {
		elapsed = 1
	}
	avg := float64(len(set)) / float64(elapsed)
	return math.Round(avg*10) / 10
}

// BuildSnapshot computes the full aggregate for today's calendar month. Every
// date comparison inside one snapshot derives from the single today value
// passed in; mixing differently-resolved "now" values across fields is the
// drift bug this signature exists to prevent.
func BuildSnapshot(set DaySet, today localdate.Date) Snapshot {
	month := SummarizeMonth(set, today, today.Year, today.Month)
	return Snapshot{
		TotalDays:        len(set),
		CurrentStreak:    CurrentStreak(set, today),
		Consistency30:    Consistency30(set, today),
		DailyAverage:     DailyAverage(set, today),
		MonthlyCompleted: month.Completed,
		MonthlyPending:   month.Pending,
		MonthlyRemaining: month.Remaining,
	}
}

// SummarizeMonth computes the completed / pending / remaining counters for an
// arbitrary calendar month. Days elapsed is today's day-of-month when viewing
// the current month, the full month for past months, and zero for months that
// have not started yet. Pending is floored at zero so clock skew between
// client and store can never surface a negative metric.
func SummarizeMonth(set DaySet, today localdate.Date, year int, month time.Month) MonthSummary {
	first := localdate.Date{Year: year, Month: month, Day: 1}
	daysInMonth := first.DaysInMonth()

	var daysElapsed int
	switch {
	case year == today.Year && month == today.Month:
		daysElapsed = today.DayOfMonth()
	case first.After(today):
		daysElapsed = 0
	default:
		daysElapsed = daysInMonth
	}

	completed := 0
	for day := 1; day <= daysInMonth; day++ {
		d := localdate.Date{Year: year, Month: month, Day: day}
		if d.After(today) {
			break
		}
		if set.Contains(d) {
			completed++
		}
	}

	pending := daysElapsed - completed
	if pending < 0 {
		pending = 0
	}

	return MonthSummary{
		Completed:   completed,
		Pending:     pending,
		Remaining:   daysInMonth - daysElapsed,
		DaysElapsed: daysElapsed,
		DaysInMonth: daysInMonth,
	}
}

// MonthStatuses classifies every day of the given month. Ordering ascending
// by day number is part of the contract; the month calendar renders entries
// in slice order.
func MonthStatuses(set DaySet, today localdate.Date, year int, month time.Month) []DayStatus {
	first := localdate.Date{Year: year, Month: month, Day: 1}
	daysInMonth := first.DaysInMonth()

	statuses := make([]DayStatus, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		d := localdate.Date{Year: year, Month: month, Day: day}
		state := StateMissed
		switch {
		case d.After(today):
			state = StateFuture
		case set.Contains(d):
			state = StateCompleted
		}
		statuses = append(statuses, DayStatus{Day: day, Date: d.Key(), Status: state})
	}
	return statuses
}

// SortedKeys returns the set's date keys in ascending order. Handy for
// deterministic logging and tests.
func SortedKeys(set DaySet) []string {
	keys := make([]string, 0, len(set))
	for d := range set {
		keys = append(keys, d.Key())
	}
	sort.Strings(keys)
	return keys
}
