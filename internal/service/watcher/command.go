package watcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/render"
)

// Options controls the watch loop.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// IncludeTicks also prints the per-second samples.
	IncludeTicks bool
	// JSON prints every event as a JSON line.
	JSON bool
	// ReconnectInterval is the pause before reopening a dropped stream.
	ReconnectInterval time.Duration
	// Output receives the events, stdout when nil.
	Output io.Writer
}

// DefaultReconnectInterval defines the pause between stream attempts.
const DefaultReconnectInterval = 2 * time.Second

// Run prints daemon events until ctx is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clockctl-watch")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	// Determine server address: command line argument overrides config.
	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Detect current system actor for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return fmt.Errorf("detect actor: %w", err)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	// Ensure connection cleanup on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Watching events", "server_address", serverAddress, "include_ticks", opts.IncludeTicks)

	handle := func(event domain.Event) error {
		if opts.JSON {
			return render.WriteEventJSON(output, event)
		}

		_, err := fmt.Fprintln(output, EventTimestamp(event), render.EventLine(event))

		return err
	}

	ticker := time.NewTicker(opts.ReconnectInterval)
	defer ticker.Stop()

	for {
		err := client.Watch(ctx, opts.IncludeTicks, handle)
		if ctx.Err() != nil {
			return nil
		}

		logger.WarnKV(ctx, "Event stream dropped, reconnecting", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// EventTimestamp formats when the event happened, or when its state was sampled.
func EventTimestamp(event domain.Event) string {
	at := event.At
	if at.IsZero() && event.State != nil {
		at = event.State.Timestamp
	}

	if at.IsZero() {
		return "-"
	}

	return at.Format(time.RFC3339)
}
