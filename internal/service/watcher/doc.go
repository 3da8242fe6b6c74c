// Package watcher follows the daemon's event stream for alarm-clockctl watch,
// reconnecting whenever the stream drops.
package watcher
