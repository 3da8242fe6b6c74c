package clock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/engine"
)

// Service abstracts the engine operations the transport layer depends on.
type Service interface {
	State() *domain.State
	SetAlarm(ctx context.Context, value string) (*domain.State, error)
	StopAlarm(ctx context.Context) *domain.State
	SnoozeAlarm(ctx context.Context) *domain.State
	ToggleHourFormat(ctx context.Context) *domain.State
	SetTimeZone(ctx context.Context, zone string) (*domain.State, error)
	Subscribe(o engine.Observer) func()
}

// DefaultWatchBuffer is how many events a slow watcher may lag behind.
const DefaultWatchBuffer = 64

// Server implements ClockServiceServer over a Service.
type Server struct {
	// service provides the clock operations.
	service Service
	// watchBuffer sizes each watcher's event queue.
	watchBuffer int
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service:     service,
		watchBuffer: DefaultWatchBuffer,
	}
}

// GetState returns the current state.
func (s *Server) GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return StateToProto(s.service.State()), nil
}

// SetAlarm arms the alarm.
func (s *Server) SetAlarm(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "alarm time is required")
	}

	state, err := s.service.SetAlarm(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return StateToProto(state), nil
}

// StopAlarm silences and clears the alarm.
func (s *Server) StopAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return StateToProto(s.service.StopAlarm(ctx)), nil
}

// SnoozeAlarm silences the alarm and schedules the re-arm.
func (s *Server) SnoozeAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return StateToProto(s.service.SnoozeAlarm(ctx)), nil
}

// ToggleHourFormat flips the display mode.
func (s *Server) ToggleHourFormat(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return StateToProto(s.service.ToggleHourFormat(ctx)), nil
}

// SetTimeZone switches the display time zone.
func (s *Server) SetTimeZone(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "time zone is required")
	}

	state, err := s.service.SetTimeZone(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}

	return StateToProto(state), nil
}

// WatchEvents sends a snapshot and then every engine event until the client leaves.
// A watcher that falls more than the buffer behind loses events.
func (s *Server) WatchEvents(in *wrapperspb.BoolValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := logger.WithKV(stream.Context(), "watcher", uuid.NewString())
	includeTicks := in.GetValue()
	events := make(chan domain.Event, s.watchBuffer)

	unsubscribe := s.service.Subscribe(engine.ObserverFunc(func(_ context.Context, event domain.Event) {
		if event.Type == domain.EventTick && !includeTicks {
			return
		}

		select {
		case events <- event:
		default:
			logger.WarnKV(ctx, "Watcher is too slow, dropping event", "type", event.Type)
		}
	}))
	defer unsubscribe()

	logger.DebugKV(ctx, "Watcher subscribed", "include_ticks", includeTicks)

	snapshot := domain.Event{
		Type:  domain.EventSnapshot,
		State: s.service.State(),
	}

	if err := stream.Send(EventToProto(snapshot)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			if err := stream.Send(EventToProto(event)); err != nil {
				return err
			}
		}
	}
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrConfiguration):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
