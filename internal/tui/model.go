package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Controller is the engine surface the terminal UI drives.
type Controller interface {
	State() *domain.State
	SetAlarm(ctx context.Context, value string) (*domain.State, error)
	StopAlarm(ctx context.Context) *domain.State
	SnoozeAlarm(ctx context.Context) *domain.State
	ToggleHourFormat(ctx context.Context) *domain.State
	SetTimeZone(ctx context.Context, zone string) (*domain.State, error)
}

// inputMode selects what the text prompt edits.
type inputMode int

const (
	inputNone inputMode = iota
	inputAlarm
	inputTimeZone
)

// maxAlarmInput is the length of "HH:MM".
const maxAlarmInput = 5

// EventMsg delivers an engine event to the model.
type EventMsg domain.Event

// resultMsg carries the outcome of an engine operation.
type resultMsg struct {
	// state is the state after the operation.
	state *domain.State
	// err is the rejected input, if any.
	err error
}

// eventsClosedMsg reports that the bridge is closed.
type eventsClosedMsg struct{}

// Model is the Bubble Tea model of the clock.
// It implements tea.Model interface (Init, Update, View).
type Model struct {
	// controller performs the operations.
	controller Controller
	// events feeds engine events, nil when none are expected.
	events <-chan domain.Event
	// state is the latest known state.
	state *domain.State
	// mode is the active prompt.
	mode inputMode
	// input is the prompt text.
	input string
	// err is the latest rejected operation.
	err error
	// quitting is set once the user quits.
	quitting bool
	// baseCtx is passed to engine operations run as commands.
	baseCtx context.Context //nolint:containedctx // Required for Bubble Tea async commands.
}

// NewModel creates a model showing the controller's current state.
func NewModel(ctx context.Context, controller Controller, events <-chan domain.Event) *Model {
	return &Model{
		controller: controller,
		events:     events,
		state:      controller.State(),
		baseCtx:    ctx,
	}
}

// Init starts listening for engine events.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update handles keys, events and operation results.
//
//nolint:cyclop // Message dispatch.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m, m.updateInput(msg)
		}

		return m, m.updateKeys(msg)

	case EventMsg:
		if msg.State != nil {
			m.state = msg.State
		}

		return m, m.waitForEvent()

	case resultMsg:
		m.err = msg.err
		if msg.state != nil {
			m.state = msg.state
		}

		return m, nil

	case eventsClosedMsg:
		return m, nil
	}

	return m, nil
}

// updateKeys handles keys outside of a prompt.
func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

		return tea.Quit
	case "a":
		m.startInput(inputAlarm)
	case "t":
		m.startInput(inputTimeZone)
	case "x":
		return m.run(func(ctx context.Context) (*domain.State, error) {
			return m.controller.StopAlarm(ctx), nil
		})
	case "z":
		return m.run(func(ctx context.Context) (*domain.State, error) {
			return m.controller.SnoozeAlarm(ctx), nil
		})
	case "f":
		return m.run(func(ctx context.Context) (*domain.State, error) {
			return m.controller.ToggleHourFormat(ctx), nil
		})
	}

	return nil
}

// updateInput edits the prompt.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true

		return tea.Quit
	case tea.KeyEsc:
		m.mode = inputNone
		m.input = ""
	case tea.KeyBackspace:
		if m.input != "" {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyRunes:
		m.appendInput(msg.Runes)
	}

	return nil
}

// startInput opens a prompt.
func (m *Model) startInput(mode inputMode) {
	m.mode = mode
	m.input = ""
	m.err = nil
}

// appendInput accepts digits and a colon for alarms and any printable text for zones.
func (m *Model) appendInput(runes []rune) {
	for _, r := range runes {
		if m.mode == inputAlarm {
			if len(m.input) >= maxAlarmInput || !(r == ':' || (r >= '0' && r <= '9')) {
				continue
			}
		}

		m.input += string(r)
	}
}

// submitInput closes the prompt and runs the operation.
func (m *Model) submitInput() tea.Cmd {
	mode, value := m.mode, strings.TrimSpace(m.input)
	m.mode = inputNone
	m.input = ""

	if mode == inputTimeZone {
		return m.run(func(ctx context.Context) (*domain.State, error) {
			return m.controller.SetTimeZone(ctx, value)
		})
	}

	return m.run(func(ctx context.Context) (*domain.State, error) {
		return m.controller.SetAlarm(ctx, value)
	})
}

// run performs an operation off the event loop.
func (m *Model) run(operation func(ctx context.Context) (*domain.State, error)) tea.Cmd {
	ctx := m.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}

	return func() tea.Msg {
		state, err := operation(ctx)

		return resultMsg{state: state, err: err}
	}
}

// waitForEvent reads the next engine event.
func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}

	events := m.events

	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}

		return EventMsg(event)
	}
}

// State returns the latest known state (useful for testing).
func (m *Model) State() *domain.State {
	return m.state
}

// IsQuitting returns true if the model is in quitting state.
func (m *Model) IsQuitting() bool {
	return m.quitting
}

// Error returns the latest rejected operation.
func (m *Model) Error() error {
	return m.err
}
