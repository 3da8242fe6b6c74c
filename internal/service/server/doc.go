// Package server runs the alarm-clock daemon: the engine, the gRPC control
// API, the browser UI and one terminal presentation, supervised together so
// that the first failure or a quit from the terminal UI stops everything.
package server
