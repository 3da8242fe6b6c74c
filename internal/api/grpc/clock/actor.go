package clock

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Metadata keys carrying the calling actor.
const (
	HostnameKey = "x-actor-hostname"
	UsernameKey = "x-actor-username"
)

// OutgoingActor attaches the actor to an outgoing call context.
func OutgoingActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, HostnameKey, actor.Hostname, UsernameKey, actor.Username)
}

// ActorFromContext reads the actor from incoming metadata, or nil.
func ActorFromContext(ctx context.Context) *domain.Actor {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	hostnames := md.Get(HostnameKey)
	usernames := md.Get(UsernameKey)

	if len(hostnames) == 0 && len(usernames) == 0 {
		return nil
	}

	actor := new(domain.Actor)

	if len(hostnames) > 0 {
		actor.Hostname = hostnames[0]
	}

	if len(usernames) > 0 {
		actor.Username = usernames[0]
	}

	return actor
}

// UnaryActorInterceptor names the request logger after the actor and logs each call.
func UnaryActorInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	ctx = logger.WithKV(ctx, "actor", ActorFromContext(ctx).String())
	started := time.Now()

	resp, err := handler(ctx, req)

	if info.FullMethod == GetStateMethod {
		logger.DebugKV(ctx, "RPC handled",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(started))
	} else {
		logger.InfoKV(ctx, "RPC handled",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(started))
	}

	return resp, err
}

// StreamActorInterceptor logs stream lifetimes with the actor.
func StreamActorInterceptor(
	srv any,
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	ctx := logger.WithKV(stream.Context(), "actor", ActorFromContext(stream.Context()).String())

	logger.InfoKV(ctx, "Stream opened", "method", info.FullMethod)

	err := handler(srv, stream)

	logger.InfoKV(ctx, "Stream closed", "method", info.FullMethod, "code", status.Code(err).String())

	return err
}
