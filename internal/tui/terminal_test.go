package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/service/sound"
)

// TestTerminal_BellBetweenFrames keeps rendered frames whole while the bell rings.
func TestTerminal_BellBetweenFrames(t *testing.T) {
	t.Parallel()

	file, err := os.Create(filepath.Join(t.TempDir(), "terminal.out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	terminal := NewTerminal(file)
	bell := sound.NewBellPlayer(terminal)

	frame := "\x1b[H" + strings.Repeat("07:05:00 ALARM ", 256) + "\x1b[K"

	const rounds = 50

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		for range rounds {
			_, writeErr := terminal.Write([]byte(frame))
			assert.NoError(t, writeErr)
		}
	}()

	go func() {
		defer wg.Done()

		for range rounds {
			assert.NoError(t, bell.Play(context.Background()))
		}
	}()

	wg.Wait()

	contents, err := os.ReadFile(file.Name())
	require.NoError(t, err)

	output := string(contents)
	require.Equal(t, rounds, strings.Count(output, "\a"))
	require.Equal(t, rounds, strings.Count(output, frame))
}

// TestNewTerminal_DefaultsToStdout wraps stdout when no file is given.
func TestNewTerminal_DefaultsToStdout(t *testing.T) {
	t.Parallel()

	terminal := NewTerminal(nil)
	require.Same(t, os.Stdout, terminal.File)
	require.NotNil(t, terminal.Option())
}
