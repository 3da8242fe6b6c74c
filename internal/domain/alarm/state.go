package alarm

import "time"

// Status is the position of the alarm in its state machine.
type Status string

const (
	// StatusDisarmed means no alarm is set.
	StatusDisarmed Status = "disarmed"
	// StatusArmed means an alarm is set and waiting for its minute.
	StatusArmed Status = "armed"
	// StatusSounding means the alarm matched and the alert is repeating.
	StatusSounding Status = "sounding"
)

// State is the clock and alarm status at a specific point in time.
type State struct {
	// Timestamp is the host instant the Time snapshot was sampled at.
	Timestamp time.Time `json:"timestamp"`
	// Alarm is the armed alarm, nil when disarmed.
	Alarm *AlarmTime `json:"alarm,omitempty"`
	// Status is the alarm state machine position.
	Status Status `json:"status"`
	// TimeZone is the IANA identifier the clock displays.
	TimeZone string `json:"time_zone"`
	// Time is the latest wall-clock snapshot in TimeZone.
	Time TimeOfDay `json:"time"`
	// Use24Hour selects 24-hour formatting.
	Use24Hour bool `json:"use_24_hour"`
	// SnoozePending is true between a snooze and the delayed re-arm.
	SnoozePending bool `json:"snooze_pending"`
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	cloned := *s
	cloned.Alarm = s.Alarm.Clone()

	return &cloned
}

// Formatted renders the snapshot according to the state's display mode.
func (s *State) Formatted() FormattedTime {
	return Format(s.Time, s.Use24Hour)
}

// IsSounding reports whether the alarm alert is active.
func (s *State) IsSounding() bool {
	return s.Status == StatusSounding
}

// ToggleLabel is the caption for the format switch control.
func (s *State) ToggleLabel() string {
	if s.Use24Hour {
		return "Switch to 12-Hour"
	}

	return "Switch to 24-Hour"
}

// AlarmLabel is the caption describing the armed alarm, empty when disarmed.
func (s *State) AlarmLabel() string {
	if s.Alarm == nil {
		return ""
	}

	return "Alarm set for " + s.Alarm.String()
}
