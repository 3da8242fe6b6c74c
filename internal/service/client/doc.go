// Package client runs one alarm-clockctl action against the clock daemon.
//
// The action is retried while the daemon is unreachable, so a command issued
// during daemon start-up still lands. Rejected input is reported at once.
package client
