package engine

import (
	"context"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// sampleLocked re-reads the host clock in the configured zone. Callers hold e.mu.
func (e *Engine) sampleLocked() {
	now := e.clock.Now()

	e.sampledAt = now
	e.current = domain.SnapshotOf(now.In(e.location))
}

// CurrentTime returns the latest snapshot without re-sampling.
func (e *Engine) CurrentTime() domain.TimeOfDay {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.current
}

// FormatTime renders the latest snapshot in the current display mode.
func (e *Engine) FormatTime() domain.FormattedTime {
	e.mu.Lock()
	defer e.mu.Unlock()

	return domain.Format(e.current, e.use24Hour)
}

// SetTimeZone switches the zone used by subsequent samples.
// The snapshot already taken and the armed alarm are left untouched.
func (e *Engine) SetTimeZone(ctx context.Context, zone string) (*domain.State, error) {
	location, err := LoadLocation(zone)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	previous := e.timeZone
	e.timeZone = zone
	e.location = location

	event := e.eventLocked(domain.EventTimeZoneChanged)
	e.mu.Unlock()

	logger.InfoKV(ctx, "Time zone changed", "from", previous, "to", zone)
	e.publish(ctx, event)

	return event.State.Clone(), nil
}

// ToggleHourFormat flips between 12-hour and 24-hour display and asks
// observers to re-render.
func (e *Engine) ToggleHourFormat(ctx context.Context) *domain.State {
	e.mu.Lock()
	e.use24Hour = !e.use24Hour

	event := e.eventLocked(domain.EventFormatChanged)
	e.mu.Unlock()

	logger.DebugKV(ctx, "Hour format toggled", "use_24_hour", event.State.Use24Hour)
	e.publish(ctx, event)

	return event.State.Clone()
}
