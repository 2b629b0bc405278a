package adherence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levisilvaaa/dailydose/localdate"
)

func day(y int, m time.Month, d int) localdate.Date {
	return localdate.Date{Year: y, Month: m, Day: d}
}

// setOf builds a DaySet straight from dates, bypassing key parsing.
func setOf(dates ...localdate.Date) DaySet {
	s := make(DaySet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

// rangeSet adds every day from first to last inclusive.
func rangeSet(s DaySet, first, last localdate.Date) DaySet {
	for d := first; !d.After(last); d = d.AddDays(1) {
		s[d] = struct{}{}
	}
	return s
}

func TestEmptySetYieldsZeroSnapshot(t *testing.T) {
	today := day(2024, time.March, 15)
	snap := BuildSnapshot(DaySet{}, today)

	assert.Equal(t, 0, snap.TotalDays)
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 0, snap.Consistency30)
	assert.Equal(t, 0.0, snap.DailyAverage)
	assert.Equal(t, 0, snap.MonthlyCompleted)
	assert.Equal(t, 15, snap.MonthlyPending)
	assert.Equal(t, 16, snap.MonthlyRemaining)
}

func TestStreakOfConsecutiveDays(t *testing.T) {
	today := day(2024, time.March, 15)
	for _, n := range []int{1, 2, 7, 30} {
		set := rangeSet(DaySet{}, today.AddDays(-(n-1)), today)
		assert.Equal(t, n, CurrentStreak(set, today), "N=%d", n)
	}
}

func TestStreakBreaksAtGap(t *testing.T) {
	today := day(2024, time.March, 15)
	// today, today-1, today-3: the missing today-2 caps the streak at 2.
	set := setOf(today, today.AddDays(-1), today.AddDays(-3))
	assert.Equal(t, 2, CurrentStreak(set, today))
}

func TestStreakGraceWhenTodayUnchecked(t *testing.T) {
	today := day(2024, time.March, 15)
	// Chain ends yesterday; not having checked in *yet* today keeps it alive.
	set := rangeSet(DaySet{}, today.AddDays(-5), today.AddDays(-1))
	assert.Equal(t, 5, CurrentStreak(set, today))

	// A gap before yesterday still breaks it.
	set = setOf(today.AddDays(-1), today.AddDays(-3))
	assert.Equal(t, 1, CurrentStreak(set, today))

	// Last check-in two days ago is no longer current.
	set = setOf(today.AddDays(-2), today.AddDays(-3))
	assert.Equal(t, 0, CurrentStreak(set, today))
}

func TestStreakAcrossLeapFebruary(t *testing.T) {
	// Every day 2024-02-01 .. 2024-03-15: 29 leap-February days plus 15.
	today := day(2024, time.March, 15)
	set := rangeSet(DaySet{}, day(2024, time.February, 1), today)
	assert.Equal(t, 44, CurrentStreak(set, today))
}

func TestConsistencyWindow(t *testing.T) {
	today := day(2024, time.March, 15)

	// 15 of the trailing 30 days.
	set := rangeSet(DaySet{}, today.AddDays(-14), today)
	assert.Equal(t, 50, Consistency30(set, today))

	// The oldest in-window day counts, one day older does not.
	edge := setOf(today.AddDays(-29))
	assert.Equal(t, 3, Consistency30(edge, today)) // round(1/30*100)
	outside := setOf(today.AddDays(-30))
	assert.Equal(t, 0, Consistency30(outside, today))
}

func TestConsistencyMonotonicUnderInWindowAdds(t *testing.T) {
	today := day(2024, time.March, 15)
	set := DaySet{}
	prev := 0
	for i := 0; i < 30; i++ {
		set[today.AddDays(-i)] = struct{}{}
		cur := Consistency30(set, today)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 100, prev)

	// Out-of-window additions change nothing.
	set[today.AddDays(-31)] = struct{}{}
	set[today.AddDays(-90)] = struct{}{}
	assert.Equal(t, 100, Consistency30(set, today))
}

func TestDailyAverage(t *testing.T) {
	today := day(2024, time.March, 15)

	assert.Equal(t, 0.0, DailyAverage(DaySet{}, today))

	// Only today: minimum divisor of one.
	assert.Equal(t, 1.0, DailyAverage(setOf(today), today))

	// 10 check-ins whose earliest is 9 days back: 10/9 rounded to 1.1.
	set := rangeSet(DaySet{}, today.AddDays(-9), today)
	assert.Equal(t, 1.1, DailyAverage(set, today))

	// Sparse history: 3 check-ins over 30 elapsed days.
	sparse := setOf(today, today.AddDays(-10), today.AddDays(-30))
	assert.Equal(t, 0.1, DailyAverage(sparse, today))
}

func TestMonthScenarioMidMarch(t *testing.T) {
	// today = 2024-03-15, check-ins on 03-01..03-10 and 03-15.
	today := day(2024, time.March, 15)
	set := rangeSet(DaySet{}, day(2024, time.March, 1), day(2024, time.March, 10))
	set[today] = struct{}{}

	sum := SummarizeMonth(set, today, 2024, time.March)
	assert.Equal(t, 11, sum.Completed)
	assert.Equal(t, 15, sum.DaysElapsed)
	assert.Equal(t, 4, sum.Pending)
	assert.Equal(t, 16, sum.Remaining)
	assert.Equal(t, 31, sum.DaysInMonth)
}

func TestMonthSummaryPastAndFuture(t *testing.T) {
	today := day(2024, time.March, 15)
	set := rangeSet(DaySet{}, day(2024, time.February, 1), day(2024, time.February, 10))

	past := SummarizeMonth(set, today, 2024, time.February)
	assert.Equal(t, 10, past.Completed)
	assert.Equal(t, 29, past.DaysElapsed)
	assert.Equal(t, 19, past.Pending)
	assert.Equal(t, 0, past.Remaining)

	future := SummarizeMonth(set, today, 2024, time.April)
	assert.Equal(t, 0, future.Completed)
	assert.Equal(t, 0, future.DaysElapsed)
	assert.Equal(t, 0, future.Pending)
	assert.Equal(t, 30, future.Remaining)
}

func TestMonthPendingFlooredAtZero(t *testing.T) {
	// Clock skew can place a store row "ahead" of the client's today; the
	// pending counter must clamp instead of going negative.
	today := day(2024, time.March, 2)
	set := setOf(day(2024, time.March, 1), day(2024, time.March, 2))
	set[day(2024, time.March, 3)] = struct{}{} // skewed row, after today

	sum := SummarizeMonth(set, today, 2024, time.March)
	assert.Equal(t, 2, sum.Completed) // rows after today are not counted
	assert.Equal(t, 0, sum.Pending)
}

func TestMonthStatusesClassification(t *testing.T) {
	today := day(2024, time.March, 15)
	set := setOf(day(2024, time.March, 1), day(2024, time.March, 15))

	days := MonthStatuses(set, today, 2024, time.March)
	require.Len(t, days, 31)

	for i, d := range days {
		assert.Equal(t, i+1, d.Day, "ascending day order")
	}

	assert.Equal(t, StateCompleted, days[0].Status)  // Mar 1
	assert.Equal(t, StateMissed, days[1].Status)     // Mar 2
	assert.Equal(t, StateCompleted, days[14].Status) // Mar 15 (today)
	assert.Equal(t, StateFuture, days[15].Status)    // Mar 16
	assert.Equal(t, StateFuture, days[30].Status)    // Mar 31
	assert.Equal(t, "2024-03-01", days[0].Date)
}

func TestPastMonthHasNoFutureDays(t *testing.T) {
	today := day(2024, time.March, 15)
	set := setOf(day(2024, time.January, 10))

	for _, d := range MonthStatuses(set, today, 2024, time.January) {
		assert.NotEqual(t, StateFuture, d.Status, "day %d", d.Day)
	}
}

func TestFutureMonthIsAllFuture(t *testing.T) {
	today := day(2024, time.March, 15)
	for _, d := range MonthStatuses(DaySet{}, today, 2024, time.April) {
		assert.Equal(t, StateFuture, d.Status, "day %d", d.Day)
	}
}

func TestNewDaySetSkipsMalformedKeys(t *testing.T) {
	set, rejected := NewDaySet([]string{
		"2024-03-01",
		"garbage",
		"2024-02-30",
		"2024-03-02",
		"2024-03-01", // duplicate collapses
	})

	assert.Len(t, set, 2)
	assert.ElementsMatch(t, []string{"garbage", "2024-02-30"}, rejected)
	assert.True(t, set.Contains(day(2024, time.March, 1)))
	assert.True(t, set.Contains(day(2024, time.March, 2)))

	// Malformed rows never corrupt the streak.
	assert.Equal(t, 0, CurrentStreak(set, day(2024, time.March, 15)))
}

func TestSortedKeys(t *testing.T) {
	set := setOf(day(2024, time.March, 3), day(2024, time.January, 9), day(2024, time.February, 29))
	assert.Equal(t, []string{"2024-01-09", "2024-02-29", "2024-03-03"}, SortedKeys(set))
}

func TestSnapshotUsesOneCanonicalToday(t *testing.T) {
	today := day(2024, time.March, 15)
	set := rangeSet(DaySet{}, day(2024, time.March, 1), day(2024, time.March, 10))
	set[today] = struct{}{}

	snap := BuildSnapshot(set, today)
	assert.Equal(t, 11, snap.TotalDays)
	assert.Equal(t, 1, snap.CurrentStreak) // only today; Mar 11-14 missing
	assert.Equal(t, 11, snap.MonthlyCompleted)
	assert.Equal(t, 4, snap.MonthlyPending)
	assert.Equal(t, 16, snap.MonthlyRemaining)
	assert.Equal(t, 37, snap.Consistency30) // round(11/30*100)
	assert.Equal(t, 0.8, snap.DailyAverage) // 11 over 14 elapsed days
}
