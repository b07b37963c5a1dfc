package ports

import (
	"context"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
)

// Renderer is the abstraction for output rendering.
// The same event stream drives either the interactive TUI or linear CI logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	Start(ctx context.Context) error

	// Stop signals the renderer to stop accepting new events and flush output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlan is called once with the scenario steps in dependency order.
	OnPlan(scenario string, steps []string)

	// OnEvent is called for every cache entry transition and settled mutation.
	OnEvent(event domain.Event)

	// OnSpanStart is called when a backend call begins.
	OnSpanStart(spanID, name string, startTime time.Time)

	// OnSpanEnd is called when a backend call ends. err is nil on success.
	OnSpanEnd(spanID string, endTime time.Time, err error)

	// OnStepDone is called when a scenario step finishes. err is nil on success.
	OnStepDone(step string, err error)
}
