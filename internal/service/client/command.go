package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/render"
)

// Action names a remote operation.
type Action string

const (
	// ActionState reads the current state.
	ActionState Action = "state"
	// ActionSetAlarm arms the alarm for Options.Argument.
	ActionSetAlarm Action = "set"
	// ActionStopAlarm silences and clears the alarm.
	ActionStopAlarm Action = "stop"
	// ActionSnoozeAlarm snoozes the alarm.
	ActionSnoozeAlarm Action = "snooze"
	// ActionToggleHourFormat flips 12/24-hour display.
	ActionToggleHourFormat Action = "toggle-format"
	// ActionSetTimeZone switches the zone to Options.Argument.
	ActionSetTimeZone Action = "timezone"
)

// Options configures a single remote action.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides server address from config when specified.
	ServerAddress string

	// Action is the operation to perform.
	Action Action

	// Argument is the alarm time or time zone for actions that take one.
	Argument string

	// JSON prints the resulting state as JSON instead of a summary line.
	JSON bool

	// RetryInterval is the delay between attempts while the daemon is unreachable.
	RetryInterval time.Duration

	// Output receives the result, stdout when nil.
	Output io.Writer
}

// DefaultRetryInterval defines retry delay while the daemon is unreachable.
const DefaultRetryInterval = 1 * time.Second

// errUnknownAction is returned for an Action this package does not implement.
var errUnknownAction = errors.New("unknown action")

// Run performs the action, retrying until success, a non-transient failure or cancellation.
//
//nolint:cyclop // One retry loop with clear exits.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clockctl")

	// Load settings; a missing file means defaults.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}

	// Use server address from options if provided, otherwise use config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Sending action", "server_address", serverAddress, "action", opts.Action)

	// attempt tries once, returns (completed, error).
	attempt := func() (bool, error) {
		state, err := perform(ctx, client, opts)

		switch {
		case err == nil:
			return true, printState(output, state, opts.JSON)
		case isTransient(err):
			// Log error but continue retrying for transient failures.
			logger.WarnKV(ctx, "Daemon unreachable, retrying", "error", err)

			return false, nil
		default:
			return false, err
		}
	}

	// Attempt immediately before starting retry loop.
	if done, err := attempt(); err != nil || done {
		return err
	}

	// Setup retry timer for subsequent attempts.
	ticker := time.NewTicker(opts.RetryInterval)
	defer ticker.Stop()

	// Retry loop until success or cancellation.
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := attempt()
			if err != nil || done {
				return err
			}
		}
	}
}

// perform dispatches the action to the client.
func perform(ctx context.Context, client *common.Client, opts *Options) (*domain.State, error) {
	switch opts.Action {
	case ActionState:
		return client.State(ctx)
	case ActionSetAlarm:
		return client.SetAlarm(ctx, opts.Argument)
	case ActionStopAlarm:
		return client.StopAlarm(ctx)
	case ActionSnoozeAlarm:
		return client.SnoozeAlarm(ctx)
	case ActionToggleHourFormat:
		return client.ToggleHourFormat(ctx)
	case ActionSetTimeZone:
		return client.SetTimeZone(ctx, opts.Argument)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, opts.Action)
	}
}

// isTransient reports whether retrying may succeed.
func isTransient(err error) bool {
	return status.Code(err) == codes.Unavailable
}

// printState writes the state as a summary line or JSON.
func printState(w io.Writer, state *domain.State, asJSON bool) error {
	if asJSON {
		return render.WriteStateJSON(w, state)
	}

	_, err := fmt.Fprintln(w, render.Summary(state))

	return err
}
