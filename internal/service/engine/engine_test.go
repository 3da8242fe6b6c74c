package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

var errSpeakerMissing = errors.New("no audio device")

// recorder collects every event the engine publishes.
type recorder struct {
	// mu protects events.
	mu sync.Mutex
	// events in delivery order.
	events []domain.Event
}

// OnEvent stores the event.
func (r *recorder) OnEvent(_ context.Context, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

// count returns how many events of the type were delivered.
func (r *recorder) count(eventType domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, event := range r.events {
		if event.Type == eventType {
			n++
		}
	}

	return n
}

// last returns the latest event of the type.
func (r *recorder) last(eventType domain.EventType) (domain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i], true
		}
	}

	return domain.Event{}, false
}

// fakePlayer counts playback calls and can simulate a broken device.
type fakePlayer struct {
	// mu protects the counters.
	mu sync.Mutex
	// plays counts Play calls.
	plays int
	// stops counts Stop calls.
	stops int
	// err is returned from Play when set.
	err error
}

// Play records a playback.
func (p *fakePlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plays++

	return p.err
}

// Stop records a silence request.
func (p *fakePlayer) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stops++

	return nil
}

// counts returns the play and stop counters.
func (p *fakePlayer) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.plays, p.stops
}

// fixture bundles an engine with its fakes.
type fixture struct {
	engine *Engine
	clock  *clock.Fake
	events *recorder
	player *fakePlayer
}

// at returns 2026-10-16 hh:mm:ss UTC.
func at(hh, mm, ss int) time.Time {
	return time.Date(2026, 10, 16, hh, mm, ss, 0, time.UTC)
}

// newFixture builds an engine on a fake clock and starts ticking.
func newFixture(t *testing.T, start time.Time, opts ...Option) *fixture {
	t.Helper()

	f := &fixture{
		clock:  clock.NewFake(start),
		events: new(recorder),
		player: new(fakePlayer),
	}

	opts = append([]Option{WithClock(f.clock), WithPlayer(f.player)}, opts...)

	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	e.Subscribe(f.events)
	require.NoError(t, e.Start(context.Background()))

	f.engine = e

	return f
}

// TestNew_InvalidTimeZone fails fast with a configuration error.
func TestNew_InvalidTimeZone(t *testing.T) {
	t.Parallel()

	_, err := New(WithTimeZone("Mars/Olympus_Mons"))
	require.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = New(WithTimeZone(""))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

// TestNew_Defaults checks the initial state before any alarm is set.
func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(at(13, 4, 5))

	e, err := New(WithClock(fake))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	state := e.State()
	require.Equal(t, domain.StatusDisarmed, state.Status)
	require.Equal(t, DefaultTimeZone, state.TimeZone)
	require.False(t, state.Use24Hour)
	require.Nil(t, state.Alarm)
	require.Equal(t, domain.TimeOfDay{Hours: 13, Minutes: 4, Seconds: 5}, state.Time)
	require.Equal(t, "01:04:05 PM", e.FormatTime().String())
}

// TestStart_Twice rejects a second start and a start after close.
func TestStart_Twice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 0, 0))

	require.ErrorIs(t, f.engine.Start(context.Background()), ErrAlreadyStarted)

	f.engine.Close()
	f.engine.Close()
	require.Zero(t, f.clock.Pending())

	e, err := New(WithClock(f.clock))
	require.NoError(t, err)
	e.Close()
	require.ErrorIs(t, e.Start(context.Background()), ErrClosed)
}

// TestTick_ResamplesEverySecond never advances time on its own.
func TestTick_ResamplesEverySecond(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(9, 59, 58))

	f.clock.Advance(3 * time.Second)

	require.Equal(t, domain.TimeOfDay{Hours: 10, Minutes: 0, Seconds: 1}, f.engine.CurrentTime())
	require.Equal(t, 4, f.events.count(domain.EventTick))
}

// TestSetAlarm_RoundTrip arms and reads back the alarm.
func TestSetAlarm_RoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(6, 0, 0))

	state, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)
	require.Equal(t, domain.StatusArmed, state.Status)
	require.Equal(t, &domain.AlarmTime{Hours: 7, Minutes: 5}, f.engine.Alarm())
	require.Equal(t, 1, f.events.count(domain.EventAlarmArmed))

	state, err = f.engine.SetAlarmAt(context.Background(), 23, 0)
	require.NoError(t, err)
	require.Equal(t, "Alarm set for 23:00", state.AlarmLabel())
}

// TestSetAlarm_RejectsInvalid leaves the state untouched on bad input.
func TestSetAlarm_RejectsInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(6, 0, 0))

	for _, bad := range []string{"24:00", "12:60", "noon", ""} {
		state, err := f.engine.SetAlarm(context.Background(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidArgument, bad)
		require.Nil(t, state)
	}

	_, err := f.engine.SetAlarmAt(context.Background(), 7, -1)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.Nil(t, f.engine.Alarm())
	require.Zero(t, f.events.count(domain.EventAlarmArmed))
}

// TestSetAlarm_Overwrites keeps exactly one alarm.
func TestSetAlarm_Overwrites(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(23, 50, 0))

	_, err := f.engine.SetAlarm(context.Background(), "23:59")
	require.NoError(t, err)

	_, err = f.engine.SetAlarm(context.Background(), "06:00")
	require.NoError(t, err)

	require.Equal(t, &domain.AlarmTime{Hours: 6, Minutes: 0}, f.engine.Alarm())

	// 23:59 must not fire any more.
	f.clock.Set(at(23, 59, 30))
	require.Zero(t, f.events.count(domain.EventAlarmSounding))
}

// TestTick_SoundsOncePerMinute fires at 07:05:00 only and repeats the alert every second.
func TestTick_SoundsOncePerMinute(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 58))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	require.Equal(t, domain.StatusArmed, f.engine.State().Status)

	f.clock.Advance(time.Second)
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)

	plays, _ := f.player.counts()
	require.Equal(t, 1, plays, "alert plays immediately")

	f.clock.Advance(59 * time.Second)

	require.Equal(t, 1, f.events.count(domain.EventAlarmSounding))
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)

	plays, _ = f.player.counts()
	require.Equal(t, 60, plays)
	require.Equal(t, 60, f.events.count(domain.EventAlertPlayed))

	sounding, ok := f.events.last(domain.EventAlarmSounding)
	require.True(t, ok)
	require.Equal(t, domain.TimeOfDay{Hours: 7, Minutes: 5, Seconds: 0}, sounding.State.Time)
}

// TestTick_MissedSecondIsNotCaughtUp skips the alarm when 07:05:00 is never sampled.
func TestTick_MissedSecondIsNotCaughtUp(t *testing.T) {
	t.Parallel()

	fake := clock.NewFake(at(7, 4, 59))

	e, err := New(WithClock(fake))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	_, err = e.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	e.Tick(context.Background())
	fake.Set(at(7, 5, 1))
	e.Tick(context.Background())

	require.Equal(t, domain.StatusArmed, e.State().Status)
}

// TestStopAlarm_CancelsAlertOnly leaves the tick loop running.
func TestStopAlarm_CancelsAlertOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 59))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	f.clock.Advance(3 * time.Second)
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)
	require.Equal(t, 2, f.clock.Pending())

	state := f.engine.StopAlarm(context.Background())
	require.Equal(t, domain.StatusDisarmed, state.Status)
	require.Nil(t, state.Alarm)
	require.Equal(t, 1, f.clock.Pending())

	playsAtStop, stops := f.player.counts()
	require.Equal(t, 1, stops)

	ticksAtStop := f.events.count(domain.EventTick)
	f.clock.Advance(10 * time.Second)

	plays, _ := f.player.counts()
	require.Equal(t, playsAtStop, plays)
	require.Equal(t, ticksAtStop+10, f.events.count(domain.EventTick))
}

// TestStopAlarm_Idempotent produces the same disarmed state when repeated.
func TestStopAlarm_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 0, 0))

	_, err := f.engine.SetAlarm(context.Background(), "08:00")
	require.NoError(t, err)

	first := f.engine.StopAlarm(context.Background())
	second := f.engine.StopAlarm(context.Background())

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Alarm, second.Alarm)
	require.Equal(t, first.SnoozePending, second.SnoozePending)
	require.Equal(t, 2, f.events.count(domain.EventAlarmStopped))

	// Stopping with nothing armed is also fine.
	idle := newFixture(t, at(7, 0, 0))
	require.Equal(t, domain.StatusDisarmed, idle.engine.StopAlarm(context.Background()).Status)
}

// TestSnoozeAlarm_RearmsNextHour stops the alert and re-arms after the delay.
func TestSnoozeAlarm_RearmsNextHour(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 59))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)

	state := f.engine.SnoozeAlarm(context.Background())
	require.Equal(t, domain.StatusDisarmed, state.Status)
	require.True(t, state.SnoozePending)
	require.Equal(t, 1, f.events.count(domain.EventAlarmSnoozed))

	f.clock.Advance(time.Second)
	require.Equal(t, domain.StatusDisarmed, f.engine.State().Status)

	f.clock.Advance(time.Second)

	state = f.engine.State()
	require.Equal(t, domain.StatusArmed, state.Status)
	require.False(t, state.SnoozePending)
	require.Equal(t, &domain.AlarmTime{Hours: 8, Minutes: 5}, state.Alarm)
	require.Equal(t, 2, f.events.count(domain.EventAlarmArmed))

	f.clock.Set(at(8, 5, 0))
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)
	require.Equal(t, 2, f.events.count(domain.EventAlarmSounding))
}

// TestSnoozeAlarm_WrapsMidnight re-arms 23:30 as 00:30.
func TestSnoozeAlarm_WrapsMidnight(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(23, 30, 0), WithSnoozeDelay(5*time.Second))

	f.engine.SnoozeAlarm(context.Background())
	f.clock.Advance(5 * time.Second)

	require.Equal(t, &domain.AlarmTime{Hours: 0, Minutes: 30}, f.engine.Alarm())
}

// TestSnoozeAlarm_CancelledByStop drops the pending re-arm.
func TestSnoozeAlarm_CancelledByStop(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 5, 0))

	f.engine.SnoozeAlarm(context.Background())
	f.engine.StopAlarm(context.Background())

	f.clock.Advance(10 * time.Second)

	require.Nil(t, f.engine.Alarm())
	require.Zero(t, f.events.count(domain.EventAlarmArmed))
	require.Equal(t, 1, f.clock.Pending())
}

// TestSnoozeAlarm_ReplacesPendingSnooze never re-arms twice.
func TestSnoozeAlarm_ReplacesPendingSnooze(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 5, 0))

	f.engine.SnoozeAlarm(context.Background())
	f.clock.Advance(time.Second)
	f.engine.SnoozeAlarm(context.Background())

	f.clock.Advance(time.Second)
	require.Nil(t, f.engine.Alarm())

	f.clock.Advance(time.Minute)
	require.Equal(t, 1, f.events.count(domain.EventAlarmArmed))
	require.Equal(t, &domain.AlarmTime{Hours: 8, Minutes: 5}, f.engine.Alarm())
}

// TestSnoozeAlarm_CancelledBySetAlarm lets an explicit alarm win over a pending snooze.
func TestSnoozeAlarm_CancelledBySetAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 5, 0))

	f.engine.SnoozeAlarm(context.Background())

	_, err := f.engine.SetAlarm(context.Background(), "09:15")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	require.Equal(t, &domain.AlarmTime{Hours: 9, Minutes: 15}, f.engine.Alarm())
	require.False(t, f.engine.State().SnoozePending)
}

// TestSetAlarm_WhileSounding returns to armed and cancels the alert.
func TestSetAlarm_WhileSounding(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(6, 59, 59))

	_, err := f.engine.SetAlarm(context.Background(), "07:00")
	require.NoError(t, err)

	f.clock.Advance(2 * time.Second)
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)

	state, err := f.engine.SetAlarm(context.Background(), "07:30")
	require.NoError(t, err)
	require.Equal(t, domain.StatusArmed, state.Status)

	plays, stops := f.player.counts()
	require.Equal(t, 1, stops)

	f.clock.Advance(5 * time.Second)

	after, _ := f.player.counts()
	require.Equal(t, plays, after)
}

// TestPlaybackFailure keeps the alarm sounding visually.
func TestPlaybackFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 59))
	f.player.err = errSpeakerMissing

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	f.clock.Advance(3 * time.Second)

	require.Equal(t, domain.StatusSounding, f.engine.State().Status)
	require.Equal(t, 3, f.events.count(domain.EventPlaybackFailed))
	require.Zero(t, f.events.count(domain.EventAlertPlayed))

	failed, ok := f.events.last(domain.EventPlaybackFailed)
	require.True(t, ok)
	require.Equal(t, errSpeakerMissing.Error(), failed.Err)
}

// advanceOrFail advances the fake clock, failing the test if callbacks block.
func advanceOrFail(t *testing.T, f *fixture, d time.Duration) {
	t.Helper()

	done := make(chan struct{})

	go func() {
		defer close(done)

		f.clock.Advance(d)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "clock callbacks did not return")
	}
}

// TestAlert_ObserverStopsAlarm lets an observer stop the alarm from the first alert.
func TestAlert_ObserverStopsAlarm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 59))

	f.engine.Subscribe(ObserverFunc(func(ctx context.Context, event domain.Event) {
		if event.Type == domain.EventAlertPlayed {
			f.engine.StopAlarm(ctx)
		}
	}))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	advanceOrFail(t, f, time.Second)

	require.Equal(t, domain.StatusDisarmed, f.engine.State().Status)
	require.Equal(t, 1, f.events.count(domain.EventAlertPlayed))
	require.Equal(t, 1, f.events.count(domain.EventAlarmStopped))

	plays, stops := f.player.counts()
	require.Equal(t, 1, plays)
	require.Positive(t, stops)

	advanceOrFail(t, f, 5*time.Second)

	plays, _ = f.player.counts()
	require.Equal(t, 1, plays)
}

// TestAlert_ObserverSnoozesOnFailure lets an observer snooze from a playback failure.
func TestAlert_ObserverSnoozesOnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 4, 59))
	f.player.err = errSpeakerMissing

	f.engine.Subscribe(ObserverFunc(func(ctx context.Context, event domain.Event) {
		if event.Type == domain.EventPlaybackFailed {
			f.engine.SnoozeAlarm(ctx)
		}
	}))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	advanceOrFail(t, f, time.Second)

	state := f.engine.State()
	require.Equal(t, domain.StatusDisarmed, state.Status)
	require.True(t, state.SnoozePending)
	require.Equal(t, 1, f.events.count(domain.EventPlaybackFailed))

	advanceOrFail(t, f, DefaultSnoozeDelay)

	require.Equal(t, &domain.AlarmTime{Hours: 8, Minutes: 5}, f.engine.Alarm())
}

// TestToggleHourFormat switches to 24-hour and hides the meridiem.
func TestToggleHourFormat(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(15, 7, 9))

	require.Equal(t, "03:07:09 PM", f.engine.FormatTime().String())

	state := f.engine.ToggleHourFormat(context.Background())
	require.True(t, state.Use24Hour)

	formatted := f.engine.FormatTime()
	require.Equal(t, "15:07:09", formatted.String())
	require.Empty(t, formatted.Meridiem)
	require.Equal(t, 1, f.events.count(domain.EventFormatChanged))

	state = f.engine.ToggleHourFormat(context.Background())
	require.False(t, state.Use24Hour)
}

// TestSetTimeZone applies to the next sample only.
func TestSetTimeZone(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(22, 0, 0))

	_, err := f.engine.SetAlarm(context.Background(), "07:05")
	require.NoError(t, err)

	_, err = f.engine.SetTimeZone(context.Background(), "Nowhere/Special")
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.Equal(t, "UTC", f.engine.TimeZone())

	state, err := f.engine.SetTimeZone(context.Background(), "Asia/Tokyo")
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", state.TimeZone)
	require.Equal(t, domain.TimeOfDay{Hours: 22}, state.Time)

	f.clock.Advance(time.Second)

	require.Equal(t, domain.TimeOfDay{Hours: 7, Minutes: 0, Seconds: 1}, f.engine.CurrentTime())
	require.Equal(t, &domain.AlarmTime{Hours: 7, Minutes: 5}, f.engine.Alarm())

	f.clock.Advance(5*time.Minute - time.Second)
	require.Equal(t, domain.StatusSounding, f.engine.State().Status)
}

// TestSubscribe_Unsubscribe stops delivery after the returned func runs.
func TestSubscribe_Unsubscribe(t *testing.T) {
	t.Parallel()

	f := newFixture(t, at(7, 0, 0))

	var calls int

	unsubscribe := f.engine.Subscribe(ObserverFunc(func(context.Context, domain.Event) {
		calls++
	}))

	f.engine.ToggleHourFormat(context.Background())
	unsubscribe()
	f.engine.ToggleHourFormat(context.Background())

	require.Equal(t, 1, calls)
}

// TestRun_RealTimers drives the engine with runtime timers in a synctest bubble.
func TestRun_RealTimers(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		events := new(recorder)
		player := new(fakePlayer)

		e, err := New(WithPlayer(player), With24Hour(true))
		require.NoError(t, err)
		e.Subscribe(events)

		// The bubble clock starts at midnight UTC.
		_, err = e.SetAlarm(t.Context(), "00:01")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)

		go func() {
			done <- e.Run(ctx)
		}()

		time.Sleep(62*time.Second + 500*time.Millisecond)
		synctest.Wait()

		require.Equal(t, domain.StatusSounding, e.State().Status)
		require.Equal(t, 1, events.count(domain.EventAlarmSounding))

		plays, _ := player.counts()
		require.Equal(t, 3, plays)

		cancel()
		require.NoError(t, <-done)
	})
}
