// Package sound plays the alarm alert.
//
// CommandPlayer shells out to the platform's stock audio tool, BellPlayer
// rings the terminal bell and NopPlayer stays silent. Playback is
// fire-and-forget: replaying restarts the sound from the beginning.
package sound
