// Package scheduler owns the local-midnight rollover task: a cancellable,
// self-rescheduling timer that fires once at each midnight boundary so
// day-scoped state (the "checked in today" flag, day-keyed snapshot caches)
// rolls over to the new day.
package scheduler

import (
	"sync"
	"time"

	"github.com/levisilvaaa/dailydose/localdate"
)

// MidnightTask fires fn at every local midnight in loc until stopped. At most
// one timer is ever pending; Start on a running task is a no-op and Stop
// cancels the pending fire. The owner must call Stop on teardown so repeated
// start/stop cycles cannot leak timers that fire together.
type MidnightTask struct {
	loc *time.Location
	fn  func(day localdate.Date)

	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// NewMidnightTask builds a task that calls fn with the new local day at each
// midnight in loc.
func NewMidnightTask(loc *time.Location, fn func(day localdate.Date)) *MidnightTask {
	if loc == nil {
		loc = time.UTC
	}
	return &MidnightTask{loc: loc, fn: fn}
}

// Start arms the timer for the next local midnight.
func (m *MidnightTask) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.scheduleLocked(time.Now())
}

// Stop cancels the pending fire. Safe to call more than once.
func (m *MidnightTask) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// scheduleLocked arms the timer for the midnight after now. The countdown is
// clamped non-negative by the date utility, so a DST edge at worst fires
// immediately rather than in the past.
func (m *MidnightTask) scheduleLocked(now time.Time) {
	ms := localdate.MillisUntilNextMidnight(now, m.loc)
	if ms == 0 {
		// Exactly at the boundary: wait the full next day, the current
		// day's fire is happening now.
		ms = 24 * time.Hour.Milliseconds()
	}
	m.timer = time.AfterFunc(time.Duration(ms)*time.Millisecond, m.fire)
}

func (m *MidnightTask) fire() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	day := localdate.Today(m.loc)
	// Reschedule before running fn so a slow callback cannot delay the next
	// boundary.
	m.scheduleLocked(time.Now())
	m.mu.Unlock()

	m.fn(day)
}
