//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the gRPC ClockService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the clock daemon.
	conn *grpc.ClientConn
	// api is the ClockService client stub.
	api *api.ClockServiceClient
	// actor is sent as metadata with every call.
	actor *domain.Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sets the actor reported to the server.
func WithActor(actor *domain.Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the clock daemon.
// Note: this uses insecure transport credentials; the daemon listens on
// loopback by default.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("alarm-clockctl")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial clock daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewClockServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// State retrieves the current clock state.
func (c *Client) State(ctx context.Context) (*domain.State, error) {
	return c.call(ctx, "get state", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.GetState(ctx, new(emptypb.Empty))
	})
}

// SetAlarm arms the remote alarm for an "HH:MM" value.
func (c *Client) SetAlarm(ctx context.Context, value string) (*domain.State, error) {
	return c.call(ctx, "set alarm", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.SetAlarm(ctx, wrapperspb.String(value))
	})
}

// StopAlarm silences and clears the remote alarm.
func (c *Client) StopAlarm(ctx context.Context) (*domain.State, error) {
	return c.call(ctx, "stop alarm", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.StopAlarm(ctx, new(emptypb.Empty))
	})
}

// SnoozeAlarm snoozes the remote alarm.
func (c *Client) SnoozeAlarm(ctx context.Context) (*domain.State, error) {
	return c.call(ctx, "snooze alarm", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.SnoozeAlarm(ctx, new(emptypb.Empty))
	})
}

// ToggleHourFormat flips the remote display mode.
func (c *Client) ToggleHourFormat(ctx context.Context) (*domain.State, error) {
	return c.call(ctx, "toggle hour format", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.ToggleHourFormat(ctx, new(emptypb.Empty))
	})
}

// SetTimeZone switches the remote display time zone.
func (c *Client) SetTimeZone(ctx context.Context, zone string) (*domain.State, error) {
	return c.call(ctx, "set time zone", func(ctx context.Context) (*structpb.Struct, error) {
		return c.api.SetTimeZone(ctx, wrapperspb.String(zone))
	})
}

// Watch streams events to handle until ctx is done, the stream ends or handle fails.
// The call timeout does not apply to the stream.
func (c *Client) Watch(ctx context.Context, includeTicks bool, handle func(domain.Event) error) error {
	stream, err := c.api.WatchEvents(api.OutgoingActor(ctx, c.actor), wrapperspb.Bool(includeTicks))
	if err != nil {
		return fmt.Errorf("watch events: %w", err)
	}

	for {
		message, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("receive event: %w", err)
		}

		event, err := api.EventFromProto(message)
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}

		if err := handle(event); err != nil {
			return err
		}
	}
}

// call runs a unary RPC with the call timeout and actor and decodes the state.
func (c *Client) call(
	ctx context.Context,
	name string,
	rpc func(ctx context.Context) (*structpb.Struct, error),
) (*domain.State, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response, err := rpc(api.OutgoingActor(callCtx, c.actor))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	state, err := api.StateFromProto(response)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return state, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
