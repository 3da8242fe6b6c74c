// Package clock implements the gRPC control API of the alarm clock.
//
// The service is described by a hand-written grpc.ServiceDesc whose messages
// are protobuf well-known types: requests are Empty, StringValue or
// BoolValue, and every state or event travels as a structpb.Struct. The
// package provides the server adapter over the engine, a typed client stub
// and the metadata helpers that carry the calling actor.
package clock
