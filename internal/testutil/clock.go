package testutil

import (
	"sync"
	"time"

	"github.com/roach88/storefront/internal/clock"
)

// ManualClock is a clock.Clock whose time only moves when Advance is called.
//
// Timers fire synchronously inside Advance, in deadline order. Timers with the
// same deadline fire in the order they were scheduled. Callbacks run without
// the clock's lock held, so they may schedule or stop other timers.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	seq      int64
	fn       func()
	done     bool
}

// NewManualClock creates a clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		seq:      c.seq,
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls inside the window.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.done = true
		c.now = next.deadline
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.compactLocked()
	c.mu.Unlock()
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range c.timers {
		if t.done || t.deadline.After(target) {
			continue
		}
		if next == nil || t.deadline.Before(next.deadline) ||
			(t.deadline.Equal(next.deadline) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (c *ManualClock) compactLocked() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = live
}

// Stop cancels the timer. Returns false if it already fired or was stopped.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
