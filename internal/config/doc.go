// Package config defines the settings shared by alarm-clock and alarm-clockctl
// and provides helpers to load, validate and save them in YAML format.
//
// Config carries clock preferences (time zone, hour format, snooze delay),
// the gRPC and HTTP listen addresses, alert sound and log settings.
// A missing file is not an error for LoadOrDefault.
package config
