package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualClock_FiresOnlyWhenDue(t *testing.T) {
	c := NewManualClock(epoch)
	fired := 0
	c.AfterFunc(5*time.Second, func() { fired++ })

	c.Advance(4999 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired, "timer must fire once")
}

func TestManualClock_DeadlineOrder(t *testing.T) {
	c := NewManualClock(epoch)
	var order []string
	c.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	c.AfterFunc(time.Second, func() { order = append(order, "a") })
	c.AfterFunc(time.Second, func() { order = append(order, "b") })

	c.Advance(10 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, epoch.Add(10*time.Second), c.Now())
}

func TestManualClock_NowDuringCallback(t *testing.T) {
	c := NewManualClock(epoch)
	var seen time.Time
	c.AfterFunc(2*time.Second, func() { seen = c.Now() })

	c.Advance(time.Minute)
	assert.Equal(t, epoch.Add(2*time.Second), seen)
}

func TestManualClock_Stop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestManualClock_CallbackSchedulesTimer(t *testing.T) {
	c := NewManualClock(epoch)
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(2 * time.Second)
	assert.Equal(t, 2, count)
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("toast")
	assert.Equal(t, "toast-1", g.Generate())
	assert.Equal(t, "toast-2", g.Generate())

	g.Reset()
	assert.Equal(t, "toast-1", g.Generate())

	assert.Equal(t, "id-1", NewSequenceGenerator("").Generate())
}
