package rest

import (
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// stateResponse is a state plus the captions the page displays.
type stateResponse struct {
	*domain.State

	// Display is the full formatted time.
	Display string `json:"display"`
	// Clock is HH:MM:SS without the meridiem.
	Clock string `json:"clock"`
	// Meridiem is AM/PM, empty in 24-hour mode.
	Meridiem string `json:"meridiem"`
	// ToggleLabel is the caption of the format switch.
	ToggleLabel string `json:"toggle_label"`
	// AlarmLabel describes the armed alarm.
	AlarmLabel string `json:"alarm_label"`
}

// eventResponse is the websocket message for an event.
type eventResponse struct {
	// Type is the event type.
	Type domain.EventType `json:"type"`
	// At is when the event happened.
	At time.Time `json:"at"`
	// Error describes a playback failure.
	Error string `json:"error,omitempty"`
	// State is the state after the event.
	State stateResponse `json:"state"`
}

// errorResponse is returned with every 4xx/5xx status.
type errorResponse struct {
	// Error is a human-readable reason.
	Error string `json:"error"`
}

// alarmRequest is the body of POST /api/alarm.
type alarmRequest struct {
	// Time is "HH:MM".
	Time string `json:"time" binding:"required"`
}

// timeZoneRequest is the body of PUT /api/timezone.
type timeZoneRequest struct {
	// TimeZone is an IANA identifier.
	TimeZone string `json:"time_zone" binding:"required"`
}

// newStateResponse decorates a state for the page.
func newStateResponse(state *domain.State) stateResponse {
	formatted := state.Formatted()

	return stateResponse{
		State:       state,
		Display:     formatted.String(),
		Clock:       formatted.Clock(),
		Meridiem:    formatted.Meridiem,
		ToggleLabel: state.ToggleLabel(),
		AlarmLabel:  state.AlarmLabel(),
	}
}

// newEventResponse decorates an event for the page.
func newEventResponse(event domain.Event) eventResponse {
	state := event.State
	if state == nil {
		state = new(domain.State)
	}

	return eventResponse{
		Type:  event.Type,
		At:    event.At,
		Error: event.Err,
		State: newStateResponse(state),
	}
}
