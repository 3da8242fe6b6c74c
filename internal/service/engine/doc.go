// Package engine implements the clock engine: it re-samples the wall clock
// every tick in the configured time zone, formats the time, and runs the
// single-alarm state machine (disarmed, armed, sounding) with stop and
// snooze.
//
// The tick loop, the alert replay and the delayed snooze re-arm are three
// independent clock.Task handles, so stopping the alarm never touches the
// tick loop. Presentation layers subscribe to events and render them.
package engine
