package engine

import (
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/service/sound"
)

const (
	// DefaultTimeZone is used when no zone is configured.
	DefaultTimeZone = "UTC"
	// DefaultTickInterval drives sampling and alarm evaluation.
	DefaultTickInterval = time.Second
	// DefaultAlertInterval is how often the alert sound is replayed while sounding.
	DefaultAlertInterval = time.Second
	// DefaultSnoozeDelay is the pause between a snooze and the re-arm.
	DefaultSnoozeDelay = 2 * time.Second
)

// Option configures the engine.
type Option func(*Engine)

// WithClock replaces the system clock, typically with clock.Fake in tests.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithTimeZone sets the initial IANA time zone.
func WithTimeZone(zone string) Option {
	return func(e *Engine) {
		e.timeZone = zone
	}
}

// With24Hour sets the initial display mode.
func With24Hour(use24Hour bool) Option {
	return func(e *Engine) {
		e.use24Hour = use24Hour
	}
}

// WithTickInterval overrides the sampling interval.
func WithTickInterval(interval time.Duration) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.tickInterval = interval
		}
	}
}

// WithAlertInterval overrides how often the alert is replayed.
func WithAlertInterval(interval time.Duration) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.alertInterval = interval
		}
	}
}

// WithSnoozeDelay overrides the delay before a snoozed alarm is re-armed.
func WithSnoozeDelay(delay time.Duration) Option {
	return func(e *Engine) {
		if delay > 0 {
			e.snoozeDelay = delay
		}
	}
}

// WithPlayer sets the alert sound player.
func WithPlayer(p sound.Player) Option {
	return func(e *Engine) {
		if p != nil {
			e.player = p
		}
	}
}
