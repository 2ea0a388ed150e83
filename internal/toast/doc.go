// Package toast schedules short-lived notifications.
//
// Each pushed toast owns a one-shot timer from an injected clock.Clock. When
// the timer fires the toast is removed exactly as if Dismiss had been called.
// Dismissing first stops the timer, and a timer that fires for a toast that is
// already gone does nothing. All state changes are reported to subscribers
// with a copy of the live list, oldest first.
package toast
