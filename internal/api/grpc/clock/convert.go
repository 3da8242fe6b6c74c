package clock

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Struct field names shared by the server and clients.
const (
	fieldTimestamp     = "timestamp"
	fieldStatus        = "status"
	fieldAlarm         = "alarm"
	fieldAlarmLabel    = "alarm_label"
	fieldTimeZone      = "time_zone"
	fieldTime          = "time"
	fieldHours         = "hours"
	fieldMinutes       = "minutes"
	fieldSeconds       = "seconds"
	fieldDisplay       = "display"
	fieldUse24Hour     = "use_24_hour"
	fieldSnoozePending = "snooze_pending"
	fieldType          = "type"
	fieldAt            = "at"
	fieldError         = "error"
	fieldState         = "state"
)

// errMalformedMessage is returned when a struct lacks required fields.
var errMalformedMessage = errors.New("malformed message")

// StateToProto converts a domain state to its wire form.
func StateToProto(state *domain.State) *structpb.Struct {
	if state == nil {
		return new(structpb.Struct)
	}

	fields := map[string]*structpb.Value{
		fieldStatus:   structpb.NewStringValue(string(state.Status)),
		fieldTimeZone: structpb.NewStringValue(state.TimeZone),
		fieldTime: structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldHours:   structpb.NewNumberValue(float64(state.Time.Hours)),
			fieldMinutes: structpb.NewNumberValue(float64(state.Time.Minutes)),
			fieldSeconds: structpb.NewNumberValue(float64(state.Time.Seconds)),
		}}),
		fieldDisplay:       structpb.NewStringValue(state.Formatted().String()),
		fieldUse24Hour:     structpb.NewBoolValue(state.Use24Hour),
		fieldSnoozePending: structpb.NewBoolValue(state.SnoozePending),
	}

	if !state.Timestamp.IsZero() {
		fields[fieldTimestamp] = structpb.NewStringValue(state.Timestamp.Format(time.RFC3339Nano))
	}

	if state.Alarm != nil {
		fields[fieldAlarm] = structpb.NewStringValue(state.Alarm.String())
		fields[fieldAlarmLabel] = structpb.NewStringValue(state.AlarmLabel())
	}

	return &structpb.Struct{Fields: fields}
}

// StateFromProto converts the wire form back to a domain state.
func StateFromProto(s *structpb.Struct) (*domain.State, error) {
	fields := s.GetFields()

	status, ok := fields[fieldStatus]
	if !ok {
		return nil, fmt.Errorf("state without status: %w", errMalformedMessage)
	}

	timeFields := fields[fieldTime].GetStructValue().GetFields()

	state := &domain.State{
		Status:   domain.Status(status.GetStringValue()),
		TimeZone: fields[fieldTimeZone].GetStringValue(),
		Time: domain.TimeOfDay{
			Hours:   int(timeFields[fieldHours].GetNumberValue()),
			Minutes: int(timeFields[fieldMinutes].GetNumberValue()),
			Seconds: int(timeFields[fieldSeconds].GetNumberValue()),
		},
		Use24Hour:     fields[fieldUse24Hour].GetBoolValue(),
		SnoozePending: fields[fieldSnoozePending].GetBoolValue(),
	}

	if value, ok := fields[fieldTimestamp]; ok {
		timestamp, err := time.Parse(time.RFC3339Nano, value.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("state timestamp: %w", err)
		}

		state.Timestamp = timestamp
	}

	if value, ok := fields[fieldAlarm]; ok {
		at, err := domain.ParseAlarmTime(value.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("state alarm: %w", err)
		}

		state.Alarm = &at
	}

	return state, nil
}

// EventToProto converts a domain event to its wire form.
func EventToProto(event domain.Event) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldType:  structpb.NewStringValue(string(event.Type)),
		fieldState: structpb.NewStructValue(StateToProto(event.State)),
	}

	if !event.At.IsZero() {
		fields[fieldAt] = structpb.NewStringValue(event.At.Format(time.RFC3339Nano))
	}

	if event.Err != "" {
		fields[fieldError] = structpb.NewStringValue(event.Err)
	}

	return &structpb.Struct{Fields: fields}
}

// EventFromProto converts the wire form back to a domain event.
func EventFromProto(s *structpb.Struct) (domain.Event, error) {
	fields := s.GetFields()

	eventType := fields[fieldType].GetStringValue()
	if eventType == "" {
		return domain.Event{}, fmt.Errorf("event without type: %w", errMalformedMessage)
	}

	event := domain.Event{
		Type: domain.EventType(eventType),
		Err:  fields[fieldError].GetStringValue(),
	}

	if value, ok := fields[fieldAt]; ok {
		at, err := time.Parse(time.RFC3339Nano, value.GetStringValue())
		if err != nil {
			return domain.Event{}, fmt.Errorf("event time: %w", err)
		}

		event.At = at
	}

	if value, ok := fields[fieldState]; ok {
		state, err := StateFromProto(value.GetStructValue())
		if err != nil {
			return domain.Event{}, err
		}

		event.State = state
	}

	return event, nil
}
