package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests.
// Callbacks run synchronously inside Advance and Set, in deadline order.
type Fake struct {
	// mu protects current, tasks and seq.
	mu sync.Mutex
	// current is the time reported by Now.
	current time.Time
	// tasks holds every task that has not been stopped or completed.
	tasks []*fakeTask
	// seq orders tasks sharing a deadline by creation.
	seq int
}

// Ensure Fake implements Clock.
var _ Clock = (*Fake)(nil)

// NewFake creates a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		current: start,
	}
}

// Now returns the fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.current
}

// Every schedules a repeating task starting one interval from now.
func (f *Fake) Every(interval time.Duration, fn func()) Task {
	return f.schedule(interval, interval, fn)
}

// AfterFunc schedules a one-shot task.
func (f *Fake) AfterFunc(delay time.Duration, fn func()) Task {
	return f.schedule(delay, 0, fn)
}

// Advance moves time forward by d, firing every task that falls due.
func (f *Fake) Advance(d time.Duration) {
	f.Set(f.Now().Add(d))
}

// Set moves time to t, firing every task due at or before t.
// Moving backwards only changes Now.
func (f *Fake) Set(t time.Time) {
	for {
		f.mu.Lock()

		next := f.nextDueLocked(t)
		if next == nil {
			f.current = t
			f.mu.Unlock()

			return
		}

		f.current = next.deadline

		if next.interval > 0 {
			next.deadline = next.deadline.Add(next.interval)
		} else {
			next.stopped = true
			f.removeLocked(next)
		}

		fn := next.fn
		f.mu.Unlock()

		fn()
	}
}

// Pending returns how many tasks are still scheduled.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.tasks)
}

// schedule registers a task with the first deadline after delay.
func (f *Fake) schedule(delay, interval time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++

	task := &fakeTask{
		clock:    f,
		deadline: f.current.Add(delay),
		interval: interval,
		fn:       fn,
		seq:      f.seq,
	}

	f.tasks = append(f.tasks, task)

	return task
}

// nextDueLocked returns the earliest task due at or before t.
func (f *Fake) nextDueLocked(t time.Time) *fakeTask {
	if len(f.tasks) == 0 {
		return nil
	}

	sort.SliceStable(f.tasks, func(i, j int) bool {
		if f.tasks[i].deadline.Equal(f.tasks[j].deadline) {
			return f.tasks[i].seq < f.tasks[j].seq
		}

		return f.tasks[i].deadline.Before(f.tasks[j].deadline)
	})

	if f.tasks[0].deadline.After(t) {
		return nil
	}

	return f.tasks[0]
}

// removeLocked drops the task from the schedule.
func (f *Fake) removeLocked(task *fakeTask) {
	for i, candidate := range f.tasks {
		if candidate == task {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)

			return
		}
	}
}

// fakeTask is a scheduled callback on a Fake clock.
type fakeTask struct {
	// clock owns the task.
	clock *Fake
	// deadline is the next time the task fires.
	deadline time.Time
	// interval is zero for one-shot tasks.
	interval time.Duration
	// fn is the callback.
	fn func()
	// seq breaks deadline ties.
	seq int
	// stopped is set once the task will never fire again.
	stopped bool
}

// Stop removes the task from the fake schedule.
func (t *fakeTask) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return
	}

	t.stopped = true
	t.clock.removeLocked(t)
}
