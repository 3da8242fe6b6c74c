package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Summary renders a one-line description of the state.
func Summary(state *domain.State) string {
	if state == nil {
		return "<nil state>"
	}

	var b strings.Builder

	b.WriteString(state.Formatted().String())
	b.WriteString(" ")
	b.WriteString(state.TimeZone)

	switch state.Status {
	case domain.StatusSounding:
		fmt.Fprintf(&b, ", alarm %s SOUNDING", state.Alarm)
	case domain.StatusArmed:
		fmt.Fprintf(&b, ", %s", state.AlarmLabel())
	case domain.StatusDisarmed:
		b.WriteString(", no alarm")
	}

	if state.SnoozePending {
		b.WriteString(", snoozed")
	}

	return b.String()
}

// EventLine renders an event for logs and the watch command.
func EventLine(event domain.Event) string {
	line := string(event.Type) + ": " + Summary(event.State)
	if event.Err != "" {
		line += " (" + event.Err + ")"
	}

	return line
}

// WriteStateJSON writes the state in its wire form as indented JSON.
func WriteStateJSON(w io.Writer, state *domain.State) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(api.StateToProto(state))
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// WriteEventJSON writes the event in its wire form as one JSON line.
func WriteEventJSON(w io.Writer, event domain.Event) error {
	data, err := protojson.Marshal(api.EventToProto(event))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// Plain presents the clock through the logger when no terminal UI runs.
type Plain struct{}

// OnEvent logs alarm events at info level and ticks at debug level.
func (Plain) OnEvent(ctx context.Context, event domain.Event) {
	switch event.Type {
	case domain.EventTick:
		logger.Debug(ctx, Summary(event.State))
	case domain.EventAlertPlayed:
		logger.DebugKV(ctx, "Alert played", "alarm", event.State.Alarm.String())
	case domain.EventPlaybackFailed:
		logger.WarnKV(ctx, "Alert sound failed", "error", event.Err)
	case domain.EventAlarmSounding:
		logger.WarnKV(ctx, "ALARM", "alarm", event.State.Alarm.String(), "time", event.State.Formatted().String())
	default:
		logger.Info(ctx, EventLine(event))
	}
}
