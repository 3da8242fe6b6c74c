// Package tui renders the clock in the terminal with Bubble Tea.
//
// The model never calls the engine from Update: operations run as commands
// and engine events arrive through a Bridge, so a slow terminal cannot stall
// the engine.
package tui

import "github.com/charmbracelet/lipgloss"

//nolint:gochecknoglobals // Package-level styling palette.
var (
	// ColorPrimary highlights the time.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}
	// ColorAlarm marks the sounding alarm.
	ColorAlarm = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	// ColorWarning marks errors and the snooze notice.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	// ColorMuted is used for help and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	timeStyle     = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Padding(0, 1)
	soundingStyle = lipgloss.NewStyle().Foreground(ColorAlarm).Bold(true).Reverse(true).Padding(0, 1)
	meridiemStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	zoneStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	alarmStyle    = lipgloss.NewStyle().Bold(true)
	noticeStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	errorStyle    = lipgloss.NewStyle().Foreground(ColorAlarm)
	helpStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	frameStyle    = lipgloss.NewStyle().Padding(1, 2)
)
