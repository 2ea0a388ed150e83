package toast

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/testutil"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, opts ...Option) (*Scheduler, *testutil.ManualClock) {
	t.Helper()
	clk := testutil.NewManualClock(epoch)
	base := []Option{
		WithClock(clk),
		WithIDGenerator(testutil.NewSequenceGenerator("toast")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	s := New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, clk
}

func ids(toasts []Toast) []string {
	out := make([]string, len(toasts))
	for i, t := range toasts {
		out[i] = t.ID
	}
	return out
}

func TestPush_ExpiresAfterTTL(t *testing.T) {
	s, clk := newTestScheduler(t)

	id := s.Push("Added to cart", WithTTL(3*time.Second), WithLevel(LevelSuccess))
	require.Equal(t, "toast-1", id)

	clk.Advance(3*time.Second - time.Millisecond)
	require.Len(t, s.All(), 1, "toast must be present just before its TTL")

	clk.Advance(2 * time.Millisecond)
	assert.Empty(t, s.All(), "toast must be gone just after its TTL")
	assert.Zero(t, clk.Pending())
}

func TestPush_DefaultTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		s, clk := newTestScheduler(t)
		s.Push("hello", WithTTL(ttl))

		got := s.All()
		require.Len(t, got, 1)
		assert.Equal(t, DefaultTTL, got[0].TTL)
		assert.Equal(t, epoch.Add(DefaultTTL), got[0].ExpiresAt())

		clk.Advance(4999 * time.Millisecond)
		assert.Len(t, s.All(), 1)
		clk.Advance(time.Millisecond)
		assert.Empty(t, s.All())
	}
}

func TestPush_SchedulerDefaultTTL(t *testing.T) {
	s, clk := newTestScheduler(t, WithDefaultTTL(time.Second))
	s.Push("short")

	clk.Advance(time.Second)
	assert.Empty(t, s.All())
}

func TestPush_Rejections(t *testing.T) {
	s, clk := newTestScheduler(t)

	assert.Empty(t, s.Push(""))
	assert.Empty(t, s.Push("   "))
	assert.Empty(t, s.Push("hi", WithLevel("warning")))
	assert.Empty(t, s.All())
	assert.Zero(t, clk.Pending())
}

func TestPush_DefaultsToInfo(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.Push("hi")
	assert.Equal(t, LevelInfo, s.All()[0].Level)
}

// Two toasts with staggered TTLs expire independently.
func TestPush_StaggeredExpiry(t *testing.T) {
	s, clk := newTestScheduler(t)

	a := s.Push("A", WithTTL(1000*time.Millisecond))
	clk.Advance(500 * time.Millisecond)
	b := s.Push("B", WithTTL(1000*time.Millisecond))

	assert.Equal(t, []string{a, b}, ids(s.All()))

	clk.Advance(500 * time.Millisecond) // t=1000
	assert.Equal(t, []string{b}, ids(s.All()))

	clk.Advance(500 * time.Millisecond) // t=1500
	assert.Empty(t, s.All())
}

func TestDismiss(t *testing.T) {
	s, clk := newTestScheduler(t)
	a := s.Push("A")
	b := s.Push("B")

	assert.True(t, s.Dismiss(a))
	assert.Equal(t, []string{b}, ids(s.All()))
	assert.Equal(t, 1, clk.Pending(), "dismissed toast's timer must be stopped")

	assert.False(t, s.Dismiss(a), "double dismissal is a no-op")
	assert.False(t, s.Dismiss("nope"))
	assert.Equal(t, []string{b}, ids(s.All()))
}

func TestDismiss_BeforeExpiryThenTimerFires(t *testing.T) {
	s, clk := newTestScheduler(t)
	var calls int
	s.Subscribe(func([]Toast) { calls++ })

	id := s.Push("A", WithTTL(time.Second))
	s.Dismiss(id)
	clk.Advance(2 * time.Second)

	assert.Empty(t, s.All())
	assert.Equal(t, 2, calls, "push and dismiss only")
}

func TestExpire_StaleEntryIsIgnored(t *testing.T) {
	s, _ := newTestScheduler(t)
	id := s.Push("A")
	var calls int
	s.Subscribe(func([]Toast) { calls++ })

	stale := &entry{toast: Toast{ID: id}}
	s.expire(stale)

	assert.Len(t, s.All(), 1, "only the toast's own timer may remove it")
	assert.Zero(t, calls)
}

func TestWithLimit_EvictsOldest(t *testing.T) {
	s, clk := newTestScheduler(t, WithLimit(2))

	a := s.Push("A")
	b := s.Push("B")
	c := s.Push("C")

	assert.Equal(t, []string{b, c}, ids(s.All()))
	assert.Equal(t, 2, clk.Pending())
	assert.False(t, s.Dismiss(a))
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	s, clk := newTestScheduler(t)
	var seen [][]string
	unsubscribe := s.Subscribe(func(ts []Toast) { seen = append(seen, ids(ts)) })

	s.Push("A", WithTTL(time.Second))
	s.Push("B", WithTTL(2*time.Second))
	clk.Advance(time.Second)
	unsubscribe()
	clk.Advance(time.Second)

	assert.Equal(t, [][]string{
		{"toast-1"},
		{"toast-1", "toast-2"},
		{"toast-2"},
	}, seen)
}

func TestAll_ReturnsCopy(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.Push("A")

	got := s.All()
	got[0].Message = "mutated"

	assert.Equal(t, "A", s.All()[0].Message)
}

func TestClose(t *testing.T) {
	s, clk := newTestScheduler(t)
	s.Push("A")
	s.Push("B")

	s.Close()
	assert.Zero(t, clk.Pending(), "close must stop every timer")
	assert.Empty(t, s.All())
	assert.Empty(t, s.Push("C"))

	s.Close()
	clk.Advance(time.Minute)
	assert.Empty(t, s.All())
}

func TestSystemClock_Expires(t *testing.T) {
	s := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer s.Close()

	id := s.Push("real time", WithTTL(20*time.Millisecond))
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestConcurrentPushDismiss(t *testing.T) {
	s := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.Push("x", WithTTL(time.Millisecond))
			s.Dismiss(id)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}
