package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// DefaultBridgeBuffer is how many events the UI may lag behind.
const DefaultBridgeBuffer = 16

// Bridge is an engine observer queueing events for the model.
// Events are dropped while the queue is full.
type Bridge struct {
	// mu guards closed against concurrent OnEvent.
	mu sync.RWMutex
	// closed is set by Close.
	closed bool
	// events is read by the model.
	events chan domain.Event
}

// NewBridge creates a bridge with the given queue size.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = DefaultBridgeBuffer
	}

	return &Bridge{
		events: make(chan domain.Event, size),
	}
}

// Events returns the queue the model reads.
func (b *Bridge) Events() <-chan domain.Event {
	return b.events
}

// OnEvent implements engine.Observer.
func (b *Bridge) OnEvent(ctx context.Context, event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	select {
	case b.events <- event:
	default:
		if event.Type != domain.EventTick {
			logger.WarnKV(ctx, "Terminal UI is too slow, dropping event", "type", event.Type)
		}
	}
}

// Close stops delivery and closes the queue.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.events)
}

// Run shows the model full screen until the user quits or ctx is canceled.
func Run(ctx context.Context, controller Controller, bridge *Bridge, opts ...tea.ProgramOption) error {
	model := NewModel(ctx, controller, bridge.Events())

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)

	if _, err := tea.NewProgram(model, options...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal UI: %w", err)
	}

	return nil
}
