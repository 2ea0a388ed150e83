package toast

import (
	"log/slog"
	"time"

	"github.com/roach88/storefront/internal/clock"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source. Defaults to clock.System.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithIDGenerator sets the id source. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Scheduler) {
		s.ids = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithLimit caps the number of live toasts. When a push exceeds n the oldest
// toasts are dismissed. n <= 0 means unlimited.
func WithLimit(n int) Option {
	return func(s *Scheduler) {
		s.limit = n
	}
}

// WithDefaultTTL sets the TTL used when Push gets none. Non-positive values
// keep DefaultTTL.
func WithDefaultTTL(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.defaultTTL = d
		}
	}
}

// PushOption configures a single toast.
type PushOption func(*pushOptions)

type pushOptions struct {
	ttl   time.Duration
	level Level
}

// WithTTL sets how long the toast stays visible. d <= 0 selects the
// scheduler's default.
func WithTTL(d time.Duration) PushOption {
	return func(o *pushOptions) {
		o.ttl = d
	}
}

// WithLevel sets the toast level. Defaults to LevelInfo.
func WithLevel(l Level) PushOption {
	return func(o *pushOptions) {
		o.level = l
	}
}
