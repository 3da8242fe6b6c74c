package clock

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReal_Now(t *testing.T) {
	t.Parallel()

	c := Real{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "clock.Now() should not return time before actual time.Now()")
	assert.False(t, got.After(after), "clock.Now() should not return time after actual time.Now()")
}

// TestReal_Every fires once per interval and stops cleanly.
func TestReal_Every(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32

		task := Real{}.Every(time.Second, func() {
			calls.Add(1)
		})

		time.Sleep(3*time.Second + time.Millisecond)
		synctest.Wait()
		require.Equal(t, int32(3), calls.Load())

		task.Stop()
		task.Stop()

		time.Sleep(5 * time.Second)
		synctest.Wait()
		require.Equal(t, int32(3), calls.Load())
	})
}

// TestReal_AfterFunc fires once, and never when stopped first.
func TestReal_AfterFunc(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		var fired, cancelled atomic.Bool

		Real{}.AfterFunc(2*time.Second, func() { fired.Store(true) })
		stopped := Real{}.AfterFunc(2*time.Second, func() { cancelled.Store(true) })
		stopped.Stop()

		time.Sleep(3 * time.Second)
		synctest.Wait()

		require.True(t, fired.Load())
		require.False(t, cancelled.Load())
	})
}

// TestFake_Advance runs due tasks in deadline order.
func TestFake_Advance(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 10, 16, 7, 4, 58, 0, time.UTC)
	f := NewFake(start)

	var order []string

	f.Every(time.Second, func() { order = append(order, "tick@"+f.Now().Format("05")) })
	f.AfterFunc(1500*time.Millisecond, func() { order = append(order, "once") })

	f.Advance(3 * time.Second)

	require.Equal(t, []string{"tick@59", "once", "tick@00", "tick@01"}, order)
	require.Equal(t, start.Add(3*time.Second), f.Now())
	require.Equal(t, 1, f.Pending())
}

// TestFake_Stop keeps stopped tasks from firing, including from inside a callback.
func TestFake_Stop(t *testing.T) {
	t.Parallel()

	f := NewFake(time.Unix(0, 0))

	var (
		ticks int
		task  Task
	)

	task = f.Every(time.Second, func() {
		ticks++
		if ticks == 2 {
			task.Stop()
		}
	})

	oneShot := f.AfterFunc(time.Second, func() { t.Fatal("stopped task fired") })
	oneShot.Stop()
	oneShot.Stop()

	f.Advance(10 * time.Second)

	require.Equal(t, 2, ticks)
	require.Zero(t, f.Pending())
}

// TestFake_ScheduleFromCallback lets a callback schedule follow-up work.
func TestFake_ScheduleFromCallback(t *testing.T) {
	t.Parallel()

	f := NewFake(time.Unix(0, 0))

	var fired []time.Duration

	f.AfterFunc(time.Second, func() {
		fired = append(fired, time.Duration(f.Now().UnixNano()))
		f.AfterFunc(2*time.Second, func() {
			fired = append(fired, time.Duration(f.Now().UnixNano()))
		})
	})

	f.Advance(5 * time.Second)

	require.Equal(t, []time.Duration{time.Second, 3 * time.Second}, fired)
}
