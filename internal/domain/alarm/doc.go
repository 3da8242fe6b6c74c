// Package alarm contains core domain types for the clock and its alarm.
//
// It defines TimeOfDay (a wall-clock snapshot) and its 12/24-hour
// formatting, AlarmTime (a validated hours/minutes pair), the alarm Status
// machine, State (what presentation layers render) with Clone helpers to
// avoid leaking internal references, and the Event types the engine emits.
package alarm
