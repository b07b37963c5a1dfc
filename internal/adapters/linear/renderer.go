// Package linear renders data layer activity as plain log lines for CI and piped output.
package linear

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/ui/output"
	"go.trai.ch/shelf/internal/ui/style"
)

type spanState struct {
	name      string
	startTime time.Time
}

// Renderer writes cache transitions to stdout and progress to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	spans map[string]*spanState
}

// NewRenderer creates a linear renderer.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ProfileANSI),
		spans:  make(map[string]*spanState),
	}
}

// Start is a no-op for the linear renderer.
func (r *Renderer) Start(_ context.Context) error {
	return nil
}

// Stop is a no-op for the linear renderer.
func (r *Renderer) Stop() error {
	return nil
}

// Wait is a no-op for the linear renderer (synchronous).
func (r *Renderer) Wait() error {
	return nil
}

// OnPlan prints the planned steps.
func (r *Renderer) OnPlan(scenario string, steps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "Running scenario %s (%d step(s))\n", scenario, len(steps))
}

// OnEvent prints one line per cache event.
func (r *Renderer) OnEvent(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := style.EntryLabel(event.Name, event.Args)
	switch event.Kind {
	case domain.EventTransition:
		glyph := r.colored(style.StatusGlyph(event.To), event.To)
		line := fmt.Sprintf("%s %s %s %s %s", glyph, label, event.From, style.Arrow, event.To)
		if event.Err != nil {
			line += ": " + event.Err.Error()
		}
		_, _ = fmt.Fprintln(r.stdout, line)
	case domain.EventInvalidated:
		_, _ = fmt.Fprintf(r.stdout, "%s %s stale\n", style.Stale, label)
	case domain.EventRemoved:
		_, _ = fmt.Fprintf(r.stdout, "%s %s removed\n", style.Circle, label)
	case domain.EventMutation:
		refs := strings.Join(lo.Map(event.Refs, func(ref domain.TaggedRef, _ int) string {
			return ref.String()
		}), " ")
		if event.Err != nil {
			_, _ = fmt.Fprintf(r.stdout, "%s %s failed: %v\n", style.Dot, label, event.Err)
		}
		if refs == "" {
			refs = "nothing"
		}
		_, _ = fmt.Fprintf(r.stdout, "%s %s invalidated %s\n", style.Dot, label, refs)
	}
}

// OnSpanStart records the start of a backend call.
func (r *Renderer) OnSpanStart(spanID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans[spanID] = &spanState{name: name, startTime: startTime}
}

// OnSpanEnd prints the outcome of a backend call.
func (r *Renderer) OnSpanEnd(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, ok := r.spans[spanID]
	if !ok {
		return
	}
	delete(r.spans, spanID)

	prefix := r.output.String(fmt.Sprintf("[%s]", span.name)).Faint().String()
	duration := endTime.Sub(span.startTime)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}

// OnStepDone prints the outcome of a scenario step.
func (r *Renderer) OnStepDone(step string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "step %s %s %v\n", step, symbol, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "step %s %s\n", step, symbol)
}

func (r *Renderer) colored(glyph string, s domain.Status) string {
	switch s {
	case domain.StatusSuccess:
		return r.output.String(glyph).Foreground(termenv.ANSIGreen).String()
	case domain.StatusError:
		return r.output.String(glyph).Foreground(termenv.ANSIRed).String()
	case domain.StatusLoading:
		return r.output.String(glyph).Foreground(termenv.ANSIYellow).String()
	default:
		return r.output.String(glyph).Faint().String()
	}
}
