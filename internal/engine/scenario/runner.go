// Package scenario runs scenario step graphs against the tagged data layer.
package scenario

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.trai.ch/zerr"
)

// StepStatus is the progress of one step in a run.
type StepStatus string

const (
	// StatusPending indicates the step is waiting for its dependencies.
	StatusPending StepStatus = "pending"
	// StatusRunning indicates the step is executing.
	StatusRunning StepStatus = "running"
	// StatusPassed indicates the step finished successfully.
	StatusPassed StepStatus = "passed"
	// StatusFailed indicates the step failed.
	StatusFailed StepStatus = "failed"
	// StatusSkipped indicates a dependency of the step failed.
	StatusSkipped StepStatus = "skipped"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Name     string
	Kind     domain.StepKind
	Status   StepStatus
	Err      error
	Duration time.Duration
}

// Report is the outcome of a run, in dependency order.
type Report struct {
	Scenario string
	Steps    []StepResult
}

// Failed returns the number of failed and skipped steps.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == StatusFailed || s.Status == StatusSkipped {
			n++
		}
	}
	return n
}

// Runner executes scenarios.
type Runner struct {
	layer    *tagcache.Layer
	tracer   ports.Tracer
	renderer ports.Renderer

	mu     sync.Mutex
	status map[string]StepStatus
	subs   map[string]*tagcache.Subscription
}

// NewRunner creates a Runner.
func NewRunner(layer *tagcache.Layer, tracer ports.Tracer, renderer ports.Renderer) *Runner {
	return &Runner{
		layer:    layer,
		tracer:   tracer,
		renderer: renderer,
		status:   make(map[string]StepStatus),
		subs:     make(map[string]*tagcache.Subscription),
	}
}

// Status returns the current status of a step.
func (r *Runner) Status(step string) StepStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status[step]
}

// Release unsubscribes every subscription still held by earlier runs.
func (r *Runner) Release() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]*tagcache.Subscription)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (r *Runner) updateStatus(step string, status StepStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status[step] = status
}

// Run executes the steps of sc with at most parallelism steps in flight.
// A failed step causes its transitive dependents to be skipped. Subscriptions
// created by the run stay mounted until an unsubscribe step or Release.
func (r *Runner) Run(ctx context.Context, sc *domain.Scenario, parallelism int) (Report, error) {
	if err := sc.Validate(); err != nil {
		return Report{}, err
	}
	if parallelism < 1 {
		parallelism = 1
	}

	state := r.newRunState(ctx, sc, parallelism)
	r.renderer.OnPlan(sc.Name, state.order)

	err := state.runLoop()

	report := Report{Scenario: sc.Name, Steps: make([]StepResult, 0, len(state.order))}
	for _, name := range state.order {
		report.Steps = append(report.Steps, state.results[name])
	}
	if err != nil {
		return report, zerr.With(zerr.Wrap(err, domain.ErrScenarioFailed.Error()), "scenario", sc.Name)
	}
	return report, nil
}

type result struct {
	step     string
	err      error
	duration time.Duration
}

type runState struct {
	r           *Runner
	ctx         context.Context
	sc          *domain.Scenario
	parallelism int

	order      []string
	steps      map[string]domain.Step
	inDegree   map[string]int
	dependents map[string][]string
	ready      []string
	active     int
	resultsCh  chan result
	results    map[string]StepResult
	errs       error
}

func (r *Runner) newRunState(ctx context.Context, sc *domain.Scenario, parallelism int) *runState {
	state := &runState{
		r:           r,
		ctx:         ctx,
		sc:          sc,
		parallelism: parallelism,
		steps:       make(map[string]domain.Step, sc.Len()),
		inDegree:    make(map[string]int, sc.Len()),
		dependents:  make(map[string][]string, sc.Len()),
		resultsCh:   make(chan result, parallelism),
		results:     make(map[string]StepResult, sc.Len()),
	}

	for step := range sc.Walk() {
		state.order = append(state.order, step.Name)
		state.steps[step.Name] = step
		deps := sc.Dependencies(step.Name)
		state.inDegree[step.Name] = len(deps)
		for _, dep := range deps {
			state.dependents[dep] = append(state.dependents[dep], step.Name)
		}
		state.results[step.Name] = StepResult{Name: step.Name, Kind: step.Kind, Status: StatusPending}
		r.updateStatus(step.Name, StatusPending)
	}
	for _, name := range state.order {
		if state.inDegree[name] == 0 {
			state.ready = append(state.ready, name)
		}
	}
	return state
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) runLoop() error {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	if state.ctx.Err() != nil {
		state.errs = errors.Join(state.errs, state.ctx.Err())
	}
	return state.errs
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.r.updateStatus(name, StatusRunning)
		state.setResult(name, StatusRunning, nil, 0)

		step := state.steps[name]
		go state.executeStep(&step)
	}
}

func (state *runState) executeStep(step *domain.Step) {
	// The span ends before the result is sent so the loop never finishes ahead of it.
	res := func() result {
		ctx, span := state.r.tracer.Start(state.ctx, step.Name)
		defer span.End()
		span.SetAttribute("shelf.step.kind", string(step.Kind))
		if step.Endpoint != "" {
			span.SetAttribute("shelf.endpoint", step.Endpoint)
		}

		start := time.Now()
		err := state.r.execute(ctx, step)
		if err != nil {
			span.RecordError(err)
		}
		return result{step: step.Name, err: err, duration: time.Since(start)}
	}()

	state.resultsCh <- res
}

func (state *runState) setResult(name string, status StepStatus, err error, d time.Duration) {
	res := state.results[name]
	res.Status = status
	res.Err = err
	res.Duration = d
	state.results[name] = res
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		err := zerr.With(zerr.Wrap(res.err, domain.ErrStepFailed.Error()), "step", res.step)
		state.errs = errors.Join(state.errs, err)
		state.r.updateStatus(res.step, StatusFailed)
		state.setResult(res.step, StatusFailed, res.err, res.duration)
		state.r.renderer.OnStepDone(res.step, res.err)
		state.skipDependents(res.step)
		return
	}

	state.r.updateStatus(res.step, StatusPassed)
	state.setResult(res.step, StatusPassed, nil, res.duration)
	state.r.renderer.OnStepDone(res.step, nil)

	for _, dep := range state.dependents[res.step] {
		if state.results[dep].Status != StatusPending {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// skipDependents marks every transitive dependent of failed as skipped.
func (state *runState) skipDependents(failed string) {
	queue := slices.Clone(state.dependents[failed])
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if state.results[name].Status != StatusPending {
			continue
		}

		err := zerr.With(domain.ErrStepSkipped, "failed", failed)
		state.r.updateStatus(name, StatusSkipped)
		state.setResult(name, StatusSkipped, err, 0)
		state.r.renderer.OnStepDone(name, err)
		queue = append(queue, state.dependents[name]...)
	}
}
