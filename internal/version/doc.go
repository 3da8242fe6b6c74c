// Package version exposes build metadata for alarm-clock and alarm-clockctl.
//
// Version, Commit and BuildTime are injected with -ldflags at build time.
// The strings appear in the version subcommand, the /health endpoint, the
// build_info metric and the gRPC user agent.
package version
