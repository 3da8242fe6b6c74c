package clock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.ClockService"

// Full method names.
const (
	GetStateMethod         = "/" + ServiceName + "/GetState"
	SetAlarmMethod         = "/" + ServiceName + "/SetAlarm"
	StopAlarmMethod        = "/" + ServiceName + "/StopAlarm"
	SnoozeAlarmMethod      = "/" + ServiceName + "/SnoozeAlarm"
	ToggleHourFormatMethod = "/" + ServiceName + "/ToggleHourFormat"
	SetTimeZoneMethod      = "/" + ServiceName + "/SetTimeZone"
	WatchEventsMethod      = "/" + ServiceName + "/WatchEvents"
)

// ClockServiceServer is the server API of the clock service.
type ClockServiceServer interface {
	GetState(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	SetAlarm(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	StopAlarm(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	SnoozeAlarm(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	ToggleHourFormat(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	SetTimeZone(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	// WatchEvents streams a snapshot followed by engine events.
	// Ticks are included only when in.Value is true.
	WatchEvents(in *wrapperspb.BoolValue, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ServiceDesc describes the clock service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: unaryHandler(GetStateMethod, newEmpty, ClockServiceServer.GetState)},
		{MethodName: "SetAlarm", Handler: unaryHandler(SetAlarmMethod, newString, ClockServiceServer.SetAlarm)},
		{MethodName: "StopAlarm", Handler: unaryHandler(StopAlarmMethod, newEmpty, ClockServiceServer.StopAlarm)},
		{MethodName: "SnoozeAlarm", Handler: unaryHandler(SnoozeAlarmMethod, newEmpty, ClockServiceServer.SnoozeAlarm)},
		{
			MethodName: "ToggleHourFormat",
			Handler:    unaryHandler(ToggleHourFormatMethod, newEmpty, ClockServiceServer.ToggleHourFormat),
		},
		{MethodName: "SetTimeZone", Handler: unaryHandler(SetTimeZoneMethod, newString, ClockServiceServer.SetTimeZone)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchEvents",
			Handler:       watchEventsHandler,
			ServerStreams: true,
		},
	},
}

// RegisterClockServiceServer registers srv on the registrar.
func RegisterClockServiceServer(s grpc.ServiceRegistrar, srv ClockServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }

// unaryHandler decodes the request and runs call through the interceptor chain.
func unaryHandler[Req proto.Message](
	fullMethod string,
	newRequest func() Req,
	call func(ClockServiceServer, context.Context, Req) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newRequest()
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(ClockServiceServer) //nolint:errcheck // HandlerType guarantees the type.

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req) //nolint:errcheck // The interceptor passes in through.

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

// watchEventsHandler decodes the single request message and starts the stream.
func watchEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(wrapperspb.BoolValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(ClockServiceServer) //nolint:errcheck // HandlerType guarantees the type.

	return server.WatchEvents(in, &grpc.GenericServerStream[wrapperspb.BoolValue, structpb.Struct]{ServerStream: stream})
}

// ClockServiceClient is the client API of the clock service.
type ClockServiceClient struct {
	// cc carries the calls.
	cc grpc.ClientConnInterface
}

// NewClockServiceClient wraps a connection.
func NewClockServiceClient(cc grpc.ClientConnInterface) *ClockServiceClient {
	return &ClockServiceClient{
		cc: cc,
	}
}

// GetState returns the current state.
func (c *ClockServiceClient) GetState(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, GetStateMethod, in, opts...)
}

// SetAlarm arms the alarm for an "HH:MM" value.
func (c *ClockServiceClient) SetAlarm(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, SetAlarmMethod, in, opts...)
}

// StopAlarm silences and clears the alarm.
func (c *ClockServiceClient) StopAlarm(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, StopAlarmMethod, in, opts...)
}

// SnoozeAlarm silences the alarm and schedules the re-arm.
func (c *ClockServiceClient) SnoozeAlarm(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, SnoozeAlarmMethod, in, opts...)
}

// ToggleHourFormat flips the display mode.
func (c *ClockServiceClient) ToggleHourFormat(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, ToggleHourFormatMethod, in, opts...)
}

// SetTimeZone switches the display time zone.
func (c *ClockServiceClient) SetTimeZone(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return c.invoke(ctx, SetTimeZoneMethod, in, opts...)
}

// WatchEvents opens the event stream.
func (c *ClockServiceClient) WatchEvents(
	ctx context.Context,
	in *wrapperspb.BoolValue,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchEventsMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[wrapperspb.BoolValue, structpb.Struct]{ClientStream: stream}

	if err := x.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

// invoke performs a unary call returning a state.
func (c *ClockServiceClient) invoke(
	ctx context.Context,
	method string,
	in proto.Message,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)

	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
