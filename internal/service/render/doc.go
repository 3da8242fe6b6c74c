// Package render turns clock states and events into text.
//
// It backs the plain (non-terminal) presentation of the daemon and the output
// of alarm-clockctl.
package render
