package bus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Unsubscribe releases a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Signal is a single-channel synchronous notifier.
//
// The zero value is ready to use. A Signal must not be copied after first use.
type Signal[T any] struct {
	mu     sync.Mutex
	subs   []*listener[T]
	logger *slog.Logger
}

type listener[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// NewSignal creates a Signal that reports recovered handler panics to logger.
func NewSignal[T any](logger *slog.Logger) *Signal[T] {
	return &Signal[T]{logger: logger}
}

// Subscribe registers fn. A nil fn is ignored.
func (s *Signal[T]) Subscribe(fn func(T)) Unsubscribe {
	if fn == nil {
		return func() {}
	}
	l := &listener[T]{fn: fn}
	l.active.Store(true)

	s.mu.Lock()
	s.subs = append(s.subs, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Store(false)
			s.remove(l)
		})
	}
}

// Emit calls every active listener with v and returns how many were called.
func (s *Signal[T]) Emit(v T) int {
	s.mu.Lock()
	snapshot := make([]*listener[T], len(s.subs))
	copy(snapshot, s.subs)
	s.mu.Unlock()

	delivered := 0
	for _, l := range snapshot {
		if !l.active.Load() {
			continue
		}
		if s.call(l, v) {
			delivered++
		}
	}
	return delivered
}

// Len returns the number of active listeners.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Reset drops every listener. Their Unsubscribe functions become no-ops.
func (s *Signal[T]) Reset() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, l := range subs {
		l.active.Store(false)
	}
}

func (s *Signal[T]) remove(target *listener[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.subs {
		if l == target {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// call runs one listener, converting a panic into a log entry.
func (s *Signal[T]) call(l *listener[T], v T) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			s.log().Error("subscriber panicked", "panic", fmt.Sprint(r))
		}
	}()
	l.fn(v)
	return true
}

func (s *Signal[T]) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
