package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/sound"
)

// Observer receives engine events. OnEvent may be called from several
// goroutines and must not block for long.
type Observer interface {
	OnEvent(ctx context.Context, event domain.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event domain.Event)

// OnEvent calls f.
func (f ObserverFunc) OnEvent(ctx context.Context, event domain.Event) {
	f(ctx, event)
}

var (
	// ErrAlreadyStarted is returned by Start when the tick loop is running.
	ErrAlreadyStarted = errors.New("engine already started")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("engine closed")
)

// Engine owns the current time, display mode and alarm state machine.
type Engine struct {
	// clock samples the time and schedules the tick, alert and snooze tasks.
	clock clock.Clock
	// player plays the alert sound.
	player sound.Player
	// tickInterval is the sampling period.
	tickInterval time.Duration
	// alertInterval is the alert replay period.
	alertInterval time.Duration
	// snoozeDelay is the wait before a snoozed alarm is re-armed.
	snoozeDelay time.Duration

	// mu protects every field below.
	mu sync.Mutex
	// timeZone is the configured zone identifier.
	timeZone string
	// location is the loaded timeZone.
	location *time.Location
	// use24Hour selects 24-hour display.
	use24Hour bool
	// current is the latest wall-clock snapshot.
	current domain.TimeOfDay
	// sampledAt is the host instant current was taken at.
	sampledAt time.Time
	// alarm is the armed alarm, nil when disarmed.
	alarm *domain.AlarmTime
	// active is true while the alarm is sounding.
	active bool
	// tickTask drives Tick once started.
	tickTask clock.Task
	// alertTask replays the alert while sounding.
	alertTask clock.Task
	// alertGen invalidates callbacks of replaced alert tasks.
	alertGen uint64
	// snoozeTask re-arms the alarm after a snooze.
	snoozeTask clock.Task
	// snoozeGen invalidates callbacks of replaced snooze tasks.
	snoozeGen uint64
	// started is set by Start.
	started bool
	// closed is set by Close.
	closed bool
	// done is closed by Close.
	done chan struct{}

	// playMu orders Play and Stop calls on the player.
	playMu sync.Mutex

	// observersMu protects observers and nextObserverID.
	observersMu sync.RWMutex
	// observers are notified of every event.
	observers map[uint64]Observer
	// nextObserverID keys the observers map.
	nextObserverID uint64
}

// New creates an engine and takes the first time sample.
// An unknown time zone fails with domain.ErrConfiguration.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		clock:         clock.Real{},
		player:        sound.NopPlayer{},
		tickInterval:  DefaultTickInterval,
		alertInterval: DefaultAlertInterval,
		snoozeDelay:   DefaultSnoozeDelay,
		timeZone:      DefaultTimeZone,
		done:          make(chan struct{}),
		observers:     make(map[uint64]Observer),
	}

	for _, opt := range opts {
		opt(e)
	}

	location, err := LoadLocation(e.timeZone)
	if err != nil {
		return nil, err
	}

	e.location = location
	e.sampleLocked()

	return e, nil
}

// LoadLocation resolves an IANA time zone through the host's zone database.
func LoadLocation(zone string) (*time.Location, error) {
	if zone == "" {
		return nil, fmt.Errorf("time zone is empty: %w", domain.ErrConfiguration)
	}

	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w: %w", zone, domain.ErrConfiguration, err)
	}

	return location, nil
}

// Start takes an immediate sample and schedules Tick once per tick interval.
// Ticking stops when ctx is done or Close is called.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()

	switch {
	case e.closed:
		e.mu.Unlock()

		return ErrClosed
	case e.started:
		e.mu.Unlock()

		return ErrAlreadyStarted
	}

	e.started = true
	e.tickTask = e.clock.Every(e.tickInterval, func() {
		e.Tick(ctx)
	})
	e.mu.Unlock()

	logger.InfoKV(ctx, "Clock started", "time_zone", e.TimeZone(), "tick_interval", e.tickInterval.String())

	e.Tick(ctx)

	go func() {
		select {
		case <-ctx.Done():
			e.Close()
		case <-e.done:
		}
	}()

	return nil
}

// Run starts the engine and blocks until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-e.done:
	}

	e.Close()
	logger.Info(ctx, "Clock stopped")

	return nil
}

// Close cancels the tick, alert and snooze tasks and silences the player.
func (e *Engine) Close() {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()

		return
	}

	e.closed = true
	stopTask(&e.tickTask)
	e.cancelAlertLocked()
	e.cancelSnoozeLocked()
	close(e.done)
	e.mu.Unlock()

	e.silence(context.Background())
}

// Subscribe registers an observer and returns a function removing it.
func (e *Engine) Subscribe(o Observer) func() {
	e.observersMu.Lock()
	defer e.observersMu.Unlock()

	e.nextObserverID++
	id := e.nextObserverID
	e.observers[id] = o

	return func() {
		e.observersMu.Lock()
		defer e.observersMu.Unlock()

		delete(e.observers, id)
	}
}

// State returns a copy of the current engine state.
func (e *Engine) State() *domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.stateLocked()
}

// TimeZone returns the configured time zone identifier.
func (e *Engine) TimeZone() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.timeZone
}

// stateLocked builds a detached State. Callers hold e.mu.
func (e *Engine) stateLocked() *domain.State {
	status := domain.StatusDisarmed

	switch {
	case e.alarm != nil && e.active:
		status = domain.StatusSounding
	case e.alarm != nil:
		status = domain.StatusArmed
	}

	return &domain.State{
		Timestamp:     e.sampledAt,
		Alarm:         e.alarm.Clone(),
		Status:        status,
		TimeZone:      e.timeZone,
		Time:          e.current,
		Use24Hour:     e.use24Hour,
		SnoozePending: e.snoozeTask != nil,
	}
}

// eventLocked snapshots the state into an event. Callers hold e.mu.
func (e *Engine) eventLocked(eventType domain.EventType) domain.Event {
	return domain.Event{
		Type:  eventType,
		State: e.stateLocked(),
		At:    e.clock.Now(),
	}
}

// publish delivers events to every observer. It must be called without e.mu held.
func (e *Engine) publish(ctx context.Context, events ...domain.Event) {
	if len(events) == 0 {
		return
	}

	e.observersMu.RLock()
	observers := make([]Observer, 0, len(e.observers))

	for _, o := range e.observers {
		observers = append(observers, o)
	}
	e.observersMu.RUnlock()

	for _, event := range events {
		for _, o := range observers {
			o.OnEvent(ctx, event)
		}
	}
}

// stopTask stops the task held in *slot and clears it.
func stopTask(slot *clock.Task) {
	if *slot == nil {
		return
	}

	(*slot).Stop()
	*slot = nil
}
