package alarm

import "time"

// EventType identifies what changed in the engine.
type EventType string

const (
	// EventTick is emitted after every time sample.
	EventTick EventType = "tick"
	// EventAlarmArmed is emitted when an alarm is set or re-armed by snooze.
	EventAlarmArmed EventType = "alarm_armed"
	// EventAlarmSounding is emitted once when the alarm minute is reached.
	EventAlarmSounding EventType = "alarm_sounding"
	// EventAlertPlayed is emitted after each alert playback, the first one included.
	EventAlertPlayed EventType = "alert_played"
	// EventAlarmStopped is emitted when the alarm is stopped or cleared.
	EventAlarmStopped EventType = "alarm_stopped"
	// EventAlarmSnoozed is emitted when a snooze is requested.
	EventAlarmSnoozed EventType = "alarm_snoozed"
	// EventPlaybackFailed is emitted when the alert sound could not be played.
	EventPlaybackFailed EventType = "playback_failed"
	// EventFormatChanged is emitted when 12/24-hour mode flips.
	EventFormatChanged EventType = "format_changed"
	// EventTimeZoneChanged is emitted when the display time zone changes.
	EventTimeZoneChanged EventType = "time_zone_changed"
	// EventSnapshot carries the state a new subscriber starts from.
	EventSnapshot EventType = "snapshot"
)

// Event is a state change notification for presentation layers.
type Event struct {
	// Type is the kind of change.
	Type EventType `json:"type"`
	// State is a copy of the engine state right after the change.
	State *State `json:"state"`
	// At is when the event was emitted according to the engine clock.
	At time.Time `json:"at"`
	// Err describes a failure for EventPlaybackFailed.
	Err string `json:"error,omitempty"`
}
