package tui

import (
	"time"

	"go.trai.ch/shelf/internal/core/domain"
)

// MsgPlan initializes the step list.
type MsgPlan struct {
	Scenario string
	Steps    []string
}

// MsgEvent carries one data layer event.
type MsgEvent struct {
	Event domain.Event
}

// MsgSpanStart signals that a backend call began.
type MsgSpanStart struct {
	SpanID    string
	Name      string
	StartTime time.Time
}

// MsgSpanEnd signals that a backend call ended.
type MsgSpanEnd struct {
	SpanID  string
	EndTime time.Time
	Err     error
}

// MsgStepDone signals that a scenario step finished.
type MsgStepDone struct {
	Step string
	Err  error
}
