package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/shelf/internal/core/domain"
)

// Renderer wraps the TUI Bubble Tea model as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the TUI in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop signals the TUI to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the TUI has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// OnPlan forwards the scenario steps to the TUI.
func (r *Renderer) OnPlan(scenario string, steps []string) {
	r.program.Send(MsgPlan{Scenario: scenario, Steps: steps})
}

// OnEvent forwards a data layer event to the TUI.
func (r *Renderer) OnEvent(event domain.Event) {
	r.program.Send(MsgEvent{Event: event})
}

// OnSpanStart forwards backend call starts to the TUI.
func (r *Renderer) OnSpanStart(spanID, name string, startTime time.Time) {
	r.program.Send(MsgSpanStart{SpanID: spanID, Name: name, StartTime: startTime})
}

// OnSpanEnd forwards backend call ends to the TUI.
func (r *Renderer) OnSpanEnd(spanID string, endTime time.Time, err error) {
	r.program.Send(MsgSpanEnd{SpanID: spanID, EndTime: endTime, Err: err})
}

// OnStepDone forwards step results to the TUI.
func (r *Renderer) OnStepDone(step string, err error) {
	r.program.Send(MsgStepDone{Step: step, Err: err})
}
