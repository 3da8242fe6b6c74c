package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// Player plays and silences the alert sound.
type Player interface {
	// Play starts the sound from the beginning, cutting off any previous playback.
	Play(ctx context.Context) error
	// Stop silences the sound and rewinds it.
	Stop(ctx context.Context) error
}

// Mode selects a Player implementation.
type Mode string

const (
	// ModeAuto uses CommandPlayer when a sound file is configured and the bell otherwise.
	ModeAuto Mode = "auto"
	// ModeCommand always uses CommandPlayer.
	ModeCommand Mode = "command"
	// ModeBell rings the terminal bell.
	ModeBell Mode = "bell"
	// ModeOff disables sound; the alarm stays visual only.
	ModeOff Mode = "off"
)

var (
	// ErrUnsupportedOS indicates the current OS has no known audio command.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrNoSoundFile is returned when command playback has nothing to play.
	ErrNoSoundFile = errors.New("sound file is not set")
	// ErrUnknownMode is returned for a mode outside the Mode constants.
	ErrUnknownMode = errors.New("unknown sound mode")
)

// ParseMode validates a mode string. Empty means ModeAuto.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch mode {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeCommand, ModeBell, ModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownMode)
	}
}

// NewPlayer builds the player for the mode. The bell writes to w.
//
//nolint:ireturn // Callers only need the Player behaviour.
func NewPlayer(mode Mode, file string, w io.Writer) (Player, error) {
	switch mode {
	case ModeOff:
		return NopPlayer{}, nil
	case ModeBell:
		return NewBellPlayer(w), nil
	case ModeCommand:
		return NewCommandPlayer(file)
	case ModeAuto, "":
		if file == "" {
			return NewBellPlayer(w), nil
		}

		return NewCommandPlayer(file)
	default:
		return nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
}

// CommandFor returns the OS command that plays file once:
// - Linux:   `paplay <file>`
// - macOS:   `afplay <file>`
// - Windows: PowerShell Media.SoundPlayer PlaySync.
func CommandFor(goos, file string) (string, []string, error) {
	osName := strings.ToLower(goos)

	switch {
	case strings.Contains(osName, "linux"):
		return "paplay", []string{file}, nil
	case strings.Contains(osName, "darwin"):
		return "afplay", []string{file}, nil
	case strings.Contains(osName, "windows"):
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(file, "'", "''"))

		return "powershell.exe", []string{"-NoProfile", "-NonInteractive", "-Command", script}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s: %w", goos, ErrUnsupportedOS)
	}
}

// CommandPlayer plays a sound file through an OS command.
type CommandPlayer struct {
	// name is the executable to run.
	name string
	// args are passed to the executable.
	args []string
	// mu protects current.
	mu sync.Mutex
	// current is the running playback process, if any.
	current *exec.Cmd
}

// NewCommandPlayer prepares a player for the file on the running OS.
func NewCommandPlayer(file string) (*CommandPlayer, error) {
	if file == "" {
		return nil, ErrNoSoundFile
	}

	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("sound file: %w", err)
	}

	name, args, err := CommandFor(runtime.GOOS, file)
	if err != nil {
		return nil, err
	}

	return &CommandPlayer{
		name: name,
		args: args,
	}, nil
}

// Play kills any previous playback and starts the command asynchronously.
// The OS takes over the rest; the process is reaped in the background.
func (p *CommandPlayer) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked()

	//nolint:gosec // The command and its arguments come from CommandFor, not user input.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), p.name, p.args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.name, err)
	}

	p.current = cmd

	go func() {
		_ = cmd.Wait() //nolint:errcheck // A killed or failed playback is not actionable.
	}()

	return nil
}

// Stop kills the running playback, if any.
func (p *CommandPlayer) Stop(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.killLocked()

	return nil
}

// killLocked terminates the current process.
func (p *CommandPlayer) killLocked() {
	if p.current == nil || p.current.Process == nil {
		return
	}

	_ = p.current.Process.Kill() //nolint:errcheck // The process may have finished on its own.
	p.current = nil
}

// bellChar is the ASCII BEL control character.
const bellChar = "\a"

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	// w receives the BEL character.
	w io.Writer
	// mu serialises writes.
	mu sync.Mutex
}

// NewBellPlayer returns a bell player writing to w, or to stdout when w is nil.
func NewBellPlayer(w io.Writer) *BellPlayer {
	if w == nil {
		w = os.Stdout
	}

	return &BellPlayer{
		w: w,
	}
}

// Play writes one BEL character.
func (p *BellPlayer) Play(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.w, bellChar); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}

	return nil
}

// Stop is a no-op: a bell cannot be interrupted.
func (p *BellPlayer) Stop(context.Context) error {
	return nil
}

// NopPlayer never makes a sound.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(context.Context) error { return nil }

// Stop does nothing.
func (NopPlayer) Stop(context.Context) error { return nil }
