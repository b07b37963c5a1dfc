package domain

import (
	"iter"
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// StepKind is the action a scenario step performs against the data layer.
type StepKind string

const (
	// StepSubscribe mounts a consumer of a query.
	StepSubscribe StepKind = "subscribe"
	// StepUnsubscribe unmounts the consumer created by a subscribe step.
	StepUnsubscribe StepKind = "unsubscribe"
	// StepInvoke reads a query without mounting it.
	StepInvoke StepKind = "invoke"
	// StepMutate invokes a mutation.
	StepMutate StepKind = "mutate"
	// StepRetry forces a refetch of a query.
	StepRetry StepKind = "retry"
	// StepInvalidate invalidates tagged references directly.
	StepInvalidate StepKind = "invalidate"
	// StepSleep waits for a duration.
	StepSleep StepKind = "sleep"
	// StepExpect asserts the state of a cache entry.
	StepExpect StepKind = "expect"
)

// Expectation describes the asserted state of a cache entry.
// Nil fields are not checked.
type Expectation struct {
	Status *Status
	Stale  *bool
	Absent bool
	// Error, when set, must be a substring of the entry's error.
	Error string
}

// Step is one node in a scenario.
type Step struct {
	Name     string
	Kind     StepKind
	Endpoint string
	Args     Args
	Refs     []TaggedRef
	// Target names the subscribe step released by an unsubscribe step.
	Target   string
	Duration time.Duration
	Expect   *Expectation
	// ExpectError marks a mutate or invoke step whose failure is the expected outcome.
	ExpectError bool
	After       []string
}

// Validate checks that the step carries the fields its kind requires.
func (s *Step) Validate() error {
	var missing string
	switch s.Kind {
	case StepSubscribe, StepInvoke, StepMutate, StepRetry:
		if s.Endpoint == "" {
			missing = "endpoint"
		}
	case StepExpect:
		if s.Endpoint == "" {
			missing = "endpoint"
		} else if s.Expect == nil {
			missing = "expect"
		}
	case StepUnsubscribe:
		if s.Target == "" {
			missing = "target"
		}
	case StepInvalidate:
		if len(s.Refs) == 0 {
			missing = "refs"
		}
	case StepSleep:
		if s.Duration <= 0 {
			missing = "duration"
		}
	default:
		return zerr.With(zerr.With(ErrInvalidStep, "step", s.Name), "kind", string(s.Kind))
	}
	if missing != "" {
		return zerr.With(zerr.With(ErrInvalidStep, "step", s.Name), "missing", missing)
	}
	return nil
}

// Scenario is a dependency graph of steps.
type Scenario struct {
	Name  string
	steps map[string]Step
	order []string
}

// NewScenario creates an empty scenario.
func NewScenario(name string) *Scenario {
	return &Scenario{
		Name:  name,
		steps: make(map[string]Step),
	}
}

// AddStep adds a step to the scenario.
// It returns an error if a step with the same name already exists.
func (s *Scenario) AddStep(step *Step) error {
	if _, exists := s.steps[step.Name]; exists {
		return zerr.With(ErrStepAlreadyExists, "step", step.Name)
	}
	if err := step.Validate(); err != nil {
		return err
	}
	s.steps[step.Name] = *step
	return nil
}

// Len returns the number of steps.
func (s *Scenario) Len() int {
	return len(s.steps)
}

// GetStep returns the named step.
func (s *Scenario) GetStep(name string) (Step, bool) {
	step, ok := s.steps[name]
	return step, ok
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the order used by Walk. Names are visited in sorted order so Walk is deterministic.
func (s *Scenario) Validate() error {
	s.order = make([]string, 0, len(s.steps))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		visited[name] = 1
		path = append(path, name)

		step, exists := s.steps[name]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", name)
		}

		deps := slices.Clone(step.After)
		if step.Kind == StepUnsubscribe && !slices.Contains(deps, step.Target) {
			deps = append(deps, step.Target)
		}
		for _, dep := range deps {
			if visited[dep] == 1 {
				return s.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[name] = 2
		path = path[:len(path)-1]
		s.order = append(s.order, name)
		return nil
	}

	names := make([]string, 0, len(s.steps))
	for name := range s.steps {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dependencies returns the names a step waits for, including the implicit
// dependency of an unsubscribe step on its target.
func (s *Scenario) Dependencies(name string) []string {
	step, ok := s.steps[name]
	if !ok {
		return nil
	}
	deps := slices.Clone(step.After)
	if step.Kind == StepUnsubscribe && !slices.Contains(deps, step.Target) {
		deps = append(deps, step.Target)
	}
	return deps
}

func (s *Scenario) buildCycleError(path []string, dep string) error {
	cyclePath := ""
	startIdx := slices.Index(path, dep)
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i] + " -> "
	}
	cyclePath += dep
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}

// Walk yields steps in dependency order. It assumes Validate has returned nil.
func (s *Scenario) Walk() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, name := range s.order {
			if !yield(s.steps[name]) {
				return
			}
		}
	}
}
