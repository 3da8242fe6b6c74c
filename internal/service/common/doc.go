// Package common holds helpers shared by several services.
//
// It provides a gRPC client wrapper for the clock service with call timeouts
// and utilities to detect the current system actor (hostname/username) that
// is sent with every call for the server's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
