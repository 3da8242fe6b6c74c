package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state to a string.
func (m *Model) View() string {
	if m.quitting || m.state == nil {
		return ""
	}

	var b strings.Builder

	formatted := m.state.Formatted()

	clockStyle := timeStyle
	if m.state.IsSounding() {
		clockStyle = soundingStyle
	}

	line := clockStyle.Render(formatted.Clock())
	if formatted.Meridiem != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Bottom, line, " ", meridiemStyle.Render(formatted.Meridiem))
	}

	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString(zoneStyle.Render(m.state.TimeZone))
	b.WriteString("\n\n")

	if label := m.state.AlarmLabel(); label != "" {
		b.WriteString(alarmStyle.Render(label))
	} else {
		b.WriteString(helpStyle.Render("No alarm"))
	}

	b.WriteString("\n")

	switch {
	case m.state.IsSounding():
		b.WriteString(soundingStyle.Render("ALARM! x to stop, z to snooze"))
		b.WriteString("\n")
	case m.state.SnoozePending:
		b.WriteString(noticeStyle.Render("Snoozed"))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	switch m.mode {
	case inputAlarm:
		b.WriteString("Alarm (HH:MM): " + m.input + "_\n")
		b.WriteString(helpStyle.Render("enter confirm · esc cancel"))
	case inputTimeZone:
		b.WriteString("Time zone: " + m.input + "_\n")
		b.WriteString(helpStyle.Render("enter confirm · esc cancel"))
	case inputNone:
		b.WriteString(helpStyle.Render(
			"a set alarm · x stop · z snooze · f " + m.state.ToggleLabel() + " · t time zone · q quit",
		))
	}

	return frameStyle.Render(b.String())
}
