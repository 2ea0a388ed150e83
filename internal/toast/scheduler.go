package toast

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/clock"
)

// Scheduler owns the live toast list and their expiry timers.
//
// Thread-safety: all methods are safe for concurrent use. Timer callbacks
// from clock.System run on their own goroutines and take the same lock.
type Scheduler struct {
	mu         sync.Mutex
	clock      clock.Clock
	ids        IDGenerator
	logger     *slog.Logger
	limit      int
	defaultTTL time.Duration
	entries    []*entry
	closed     bool
	changed    *bus.Signal[[]Toast]
}

type entry struct {
	toast Toast
	timer clock.Timer
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:      clock.System{},
		ids:        UUIDv7Generator{},
		logger:     slog.Default(),
		defaultTTL: DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.changed = bus.NewSignal[[]Toast](s.logger)
	return s
}

// Push shows message and schedules its removal. It returns the new toast id,
// or "" if the message is blank, the level is unknown, or the scheduler is
// closed.
func (s *Scheduler) Push(message string, opts ...PushOption) string {
	po := pushOptions{level: LevelInfo}
	for _, opt := range opts {
		opt(&po)
	}
	if po.ttl <= 0 {
		po.ttl = s.defaultTTL
	}
	if strings.TrimSpace(message) == "" {
		s.logger.Debug("toast rejected", "reason", "empty message")
		return ""
	}
	if !po.level.Valid() {
		s.logger.Debug("toast rejected", "reason", "unknown level", "level", po.level)
		return ""
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("toast rejected", "reason", "scheduler closed")
		return ""
	}
	e := &entry{toast: Toast{
		ID:        s.ids.Generate(),
		Message:   message,
		Level:     po.level,
		TTL:       po.ttl,
		CreatedAt: s.clock.Now(),
	}}
	// The callback takes mu, so it cannot observe e before timer is set.
	e.timer = s.clock.AfterFunc(po.ttl, func() { s.expire(e) })
	s.entries = append(s.entries, e)
	for s.limit > 0 && len(s.entries) > s.limit {
		oldest := s.entries[0]
		oldest.timer.Stop()
		s.entries = s.entries[1:]
		s.logger.Debug("toast evicted", "id", oldest.toast.ID, "limit", s.limit)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("toast pushed", "id", e.toast.ID, "level", e.toast.Level, "ttl", e.toast.TTL)
	s.changed.Emit(snap)
	return e.toast.ID
}

// Dismiss removes the toast with id and stops its timer. Unknown or already
// removed ids are ignored. Returns whether a toast was removed.
func (s *Scheduler) Dismiss(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(func(e *entry) bool { return e.toast.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	e := s.entries[i]
	e.timer.Stop()
	snap := s.removeLocked(i)
	s.mu.Unlock()

	s.logger.Debug("toast dismissed", "id", id)
	s.changed.Emit(snap)
	return true
}

// expire runs from e's timer. It only removes e itself, so a stale timer for
// a dismissed toast is a no-op.
func (s *Scheduler) expire(e *entry) {
	s.mu.Lock()
	i := s.indexLocked(func(x *entry) bool { return x == e })
	if i < 0 {
		s.mu.Unlock()
		return
	}
	snap := s.removeLocked(i)
	s.mu.Unlock()

	s.logger.Debug("toast expired", "id", e.toast.ID)
	s.changed.Emit(snap)
}

// All returns the live toasts, oldest first.
func (s *Scheduler) All() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of live toasts.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Subscribe calls fn with the live list after every change.
func (s *Scheduler) Subscribe(fn func([]Toast)) bus.Unsubscribe {
	return s.changed.Subscribe(fn)
}

// Close stops every pending timer, drops the live toasts, and releases
// subscribers. Later pushes are rejected. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, e := range s.entries {
		e.timer.Stop()
	}
	n := len(s.entries)
	s.entries = nil
	s.mu.Unlock()

	s.changed.Reset()
	s.logger.Debug("toast scheduler closed", "dropped", n)
}

func (s *Scheduler) indexLocked(match func(*entry) bool) int {
	for i, e := range s.entries {
		if match(e) {
			return i
		}
	}
	return -1
}

func (s *Scheduler) removeLocked(i int) []Toast {
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() []Toast {
	out := make([]Toast, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.toast
	}
	return out
}
