// Package clock abstracts wall time and one-shot timers so that expiry
// behavior can be driven deterministically in tests.
package clock

import "time"

// Timer is a pending one-shot callback.
//
// Stop reports whether the call prevented the callback from running. It is
// safe to call Stop more than once.
type Timer interface {
	Stop() bool
}

// Clock provides the current time and schedules callbacks.
//
// Callbacks scheduled with AfterFunc may run on a goroutine other than the
// caller's; consumers must synchronize the state they touch.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the production Clock backed by the time package.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f via time.AfterFunc.
func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
