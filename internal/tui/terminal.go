package tui

import (
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is the program output shared with other terminal writers, such as the alert bell.
// Each Write is delivered whole, so a bell never lands inside a rendered frame.
type Terminal struct {
	*os.File

	// mu serialises writes.
	mu sync.Mutex
}

// NewTerminal wraps f, or stdout when f is nil.
func NewTerminal(f *os.File) *Terminal {
	if f == nil {
		f = os.Stdout
	}

	return &Terminal{
		File: f,
	}
}

// Write writes p while holding the terminal lock.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.File.Write(p)
}

// WriteString writes s while holding the terminal lock.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// Option renders the program through the terminal.
func (t *Terminal) Option() tea.ProgramOption {
	return tea.WithOutput(t)
}
