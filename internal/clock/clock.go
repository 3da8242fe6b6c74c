// Package clock abstracts the wall clock and timers so the engine can be
// driven by a fake clock in tests.
//
// Every scheduled callback is returned as a Task handle which can be
// stopped independently of the others.
package clock

import (
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Stop cancels the task. It is safe to call more than once.
	Stop()
}

// Clock provides the current time and schedules callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Every calls fn once per interval until the task is stopped.
	Every(interval time.Duration, fn func()) Task
	// AfterFunc calls fn once after delay unless the task is stopped first.
	AfterFunc(delay time.Duration, fn func()) Task
}

// Real implements Clock using the system time and runtime timers.
type Real struct{}

// Ensure Real implements Clock.
var _ Clock = Real{}

// Now returns the current time from the system clock.
func (Real) Now() time.Time {
	return time.Now()
}

// Every starts a ticker goroutine that runs fn on each tick.
func (Real) Every(interval time.Duration, fn func()) Task {
	task := &tickerTask{
		done: make(chan struct{}),
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-task.done:
				return
			case <-ticker.C:
				// A stop racing with a tick must win.
				select {
				case <-task.done:
					return
				default:
				}

				fn()
			}
		}
	}()

	return task
}

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(delay time.Duration, fn func()) Task {
	return &timerTask{
		timer: time.AfterFunc(delay, fn),
	}
}

// tickerTask stops the goroutine started by Real.Every.
type tickerTask struct {
	// done is closed when the task is stopped.
	done chan struct{}
	// once guards closing done.
	once sync.Once
}

// Stop ends the ticker goroutine.
func (t *tickerTask) Stop() {
	t.once.Do(func() {
		close(t.done)
	})
}

// timerTask adapts *time.Timer to Task.
type timerTask struct {
	// timer is the runtime timer behind the task.
	timer *time.Timer
}

// Stop cancels the timer if it has not fired yet.
func (t *timerTask) Stop() {
	t.timer.Stop()
}
