package engine

import (
	"context"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// SetAlarm parses an "HH:MM" string and arms the alarm for it.
func (e *Engine) SetAlarm(ctx context.Context, value string) (*domain.State, error) {
	at, err := domain.ParseAlarmTime(value)
	if err != nil {
		return nil, err
	}

	return e.arm(ctx, at), nil
}

// SetAlarmAt validates hours and minutes and arms the alarm for them.
func (e *Engine) SetAlarmAt(ctx context.Context, hours, minutes int) (*domain.State, error) {
	at, err := domain.NewAlarmTime(hours, minutes)
	if err != nil {
		return nil, err
	}

	return e.arm(ctx, at), nil
}

// Alarm returns the armed alarm, or nil.
func (e *Engine) Alarm() *domain.AlarmTime {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.alarm.Clone()
}

// arm replaces any alarm, alert or pending snooze with a new armed alarm.
func (e *Engine) arm(ctx context.Context, at domain.AlarmTime) *domain.State {
	e.mu.Lock()

	wasSounding := e.active
	e.cancelAlertLocked()
	e.cancelSnoozeLocked()
	e.alarm = &at
	e.active = false

	event := e.eventLocked(domain.EventAlarmArmed)
	e.mu.Unlock()

	if wasSounding {
		e.silence(ctx)
	}

	logger.InfoKV(ctx, "Alarm armed", "alarm", at.String(), "time_zone", event.State.TimeZone)
	e.publish(ctx, event)

	return event.State.Clone()
}

// Tick samples the time and fires the alarm when its minute starts.
// The match needs seconds == 0, so a tick skipped at that second misses the alarm.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()

	e.sampleLocked()
	events := []domain.Event{e.eventLocked(domain.EventTick)}

	var (
		triggered bool
		gen       uint64
	)

	if e.alarm != nil && !e.active && e.current.Matches(*e.alarm) {
		e.active = true
		e.alertGen++
		gen = e.alertGen
		triggered = true

		e.alertTask = e.clock.Every(e.alertInterval, func() {
			e.alert(ctx, gen)
		})

		events = append(events, e.eventLocked(domain.EventAlarmSounding))
	}
	e.mu.Unlock()

	if triggered {
		logger.InfoKV(ctx, "Alarm sounding", "alarm", events[1].State.Alarm.String())
	}

	e.publish(ctx, events...)

	if triggered {
		e.alert(ctx, gen)
	}
}

// StopAlarm cancels the alert and any pending snooze and clears the alarm.
// It is idempotent; every call notifies observers.
func (e *Engine) StopAlarm(ctx context.Context) *domain.State {
	e.mu.Lock()

	wasArmed := e.alarm != nil
	e.cancelAlertLocked()
	e.cancelSnoozeLocked()
	e.alarm = nil
	e.active = false

	event := e.eventLocked(domain.EventAlarmStopped)
	e.mu.Unlock()

	e.silence(ctx)

	if wasArmed {
		logger.Info(ctx, "Alarm stopped")
	}

	e.publish(ctx, event)

	return event.State.Clone()
}

// SnoozeAlarm stops the alarm and re-arms it after the snooze delay
// for the same minute of the following hour, measured when the delay ends.
func (e *Engine) SnoozeAlarm(ctx context.Context) *domain.State {
	e.mu.Lock()

	e.cancelAlertLocked()
	e.cancelSnoozeLocked()
	e.alarm = nil
	e.active = false

	stopped := e.eventLocked(domain.EventAlarmStopped)

	e.snoozeGen++
	gen := e.snoozeGen
	callbackCtx := context.WithoutCancel(ctx)

	e.snoozeTask = e.clock.AfterFunc(e.snoozeDelay, func() {
		e.rearm(callbackCtx, gen)
	})

	snoozed := e.eventLocked(domain.EventAlarmSnoozed)
	e.mu.Unlock()

	e.silence(ctx)

	logger.InfoKV(ctx, "Alarm snoozed", "delay", e.snoozeDelay.String())
	e.publish(ctx, stopped, snoozed)

	return snoozed.State.Clone()
}

// rearm completes a snooze unless it was cancelled or replaced meanwhile.
func (e *Engine) rearm(ctx context.Context, gen uint64) {
	e.mu.Lock()

	if e.snoozeGen != gen || e.snoozeTask == nil {
		e.mu.Unlock()

		return
	}

	e.snoozeTask = nil
	e.sampleLocked()

	at := domain.AlarmTime{
		Hours:   e.current.Hours,
		Minutes: e.current.Minutes,
	}.Next()
	e.mu.Unlock()

	e.arm(ctx, at)
}

// alert plays the sound while the alert generation is still current and
// notifies observers once the player is released.
func (e *Engine) alert(ctx context.Context, gen uint64) {
	event, ok := e.playAlert(ctx, gen)
	if !ok {
		return
	}

	if event.Type == domain.EventPlaybackFailed {
		logger.WarnKV(ctx, "Alert playback failed, continuing visually", "error", event.Err)
	}

	e.publish(ctx, event)
}

// playAlert runs one playback under playMu and returns the event describing it.
// ok is false when the alert was stopped or replaced meanwhile.
func (e *Engine) playAlert(ctx context.Context, gen uint64) (domain.Event, bool) {
	e.playMu.Lock()
	defer e.playMu.Unlock()

	e.mu.Lock()
	current := e.active && e.alertGen == gen
	e.mu.Unlock()

	if !current {
		return domain.Event{}, false
	}

	err := e.player.Play(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active || e.alertGen != gen {
		return domain.Event{}, false
	}

	if err != nil {
		event := e.eventLocked(domain.EventPlaybackFailed)
		event.Err = err.Error()

		return event, true
	}

	return e.eventLocked(domain.EventAlertPlayed), true
}

// silence stops the player; failures are only logged.
func (e *Engine) silence(ctx context.Context) {
	e.playMu.Lock()
	defer e.playMu.Unlock()

	if err := e.player.Stop(ctx); err != nil {
		logger.WarnKV(ctx, "Failed to stop alert playback", "error", err)
	}
}

// cancelAlertLocked stops the alert task. Callers hold e.mu.
func (e *Engine) cancelAlertLocked() {
	stopTask(&e.alertTask)
	e.alertGen++
}

// cancelSnoozeLocked drops a pending re-arm. Callers hold e.mu.
func (e *Engine) cancelSnoozeLocked() {
	stopTask(&e.snoozeTask)
	e.snoozeGen++
}
