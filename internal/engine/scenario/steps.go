package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func (r *Runner) execute(ctx context.Context, step *domain.Step) error {
	switch step.Kind {
	case domain.StepSubscribe:
		return r.subscribe(ctx, step)
	case domain.StepUnsubscribe:
		return r.unsubscribe(step)
	case domain.StepInvoke:
		entry, err := r.layer.Invoke(ctx, step.Endpoint, step.Args)
		if err != nil {
			return err
		}
		return checkOutcome(step, entry.Err)
	case domain.StepRetry:
		entry, err := r.layer.Retry(ctx, step.Endpoint, step.Args)
		if err != nil {
			return err
		}
		return checkOutcome(step, entry.Err)
	case domain.StepMutate:
		_, err := r.layer.InvokeMutation(ctx, step.Endpoint, step.Args)
		return checkOutcome(step, err)
	case domain.StepInvalidate:
		return r.layer.Invalidate(ctx, step.Refs...)
	case domain.StepSleep:
		return sleep(ctx, step.Duration)
	case domain.StepExpect:
		return r.expect(step)
	default:
		return zerr.With(zerr.With(domain.ErrInvalidStep, "step", step.Name), "kind", string(step.Kind))
	}
}

func (r *Runner) subscribe(ctx context.Context, step *domain.Step) error {
	sub, entry, err := r.layer.Subscribe(ctx, step.Endpoint, step.Args)
	if err != nil {
		return err
	}

	r.mu.Lock()
	prev := r.subs[step.Name]
	r.subs[step.Name] = sub
	r.mu.Unlock()
	if prev != nil {
		prev.Unsubscribe()
	}
	return checkOutcome(step, entry.Err)
}

func (r *Runner) unsubscribe(step *domain.Step) error {
	r.mu.Lock()
	sub, ok := r.subs[step.Target]
	delete(r.subs, step.Target)
	r.mu.Unlock()

	if !ok {
		return zerr.With(zerr.With(domain.ErrInvalidStep, "step", step.Name), "target", step.Target)
	}
	sub.Unsubscribe()
	return nil
}

// checkOutcome compares a step's error with its ExpectError flag.
func checkOutcome(step *domain.Step, err error) error {
	switch {
	case step.ExpectError && err == nil:
		return zerr.With(zerr.With(domain.ErrExpectationFailed, "step", step.Name), "want", "error")
	case step.ExpectError:
		return nil
	default:
		return err
	}
}

func (r *Runner) expect(step *domain.Step) error {
	entry, found := r.layer.Peek(step.Endpoint, step.Args)
	exp := step.Expect

	mismatch := func(field string, want, got any) error {
		err := zerr.With(domain.ErrExpectationFailed, "step", step.Name)
		err = zerr.With(err, "field", field)
		err = zerr.With(err, "want", fmt.Sprint(want))
		return zerr.With(err, "got", fmt.Sprint(got))
	}

	if exp.Absent {
		if found {
			return mismatch("present", false, true)
		}
		return nil
	}
	if !found {
		return mismatch("present", true, false)
	}
	if exp.Status != nil && entry.Status != *exp.Status {
		return mismatch("status", *exp.Status, entry.Status)
	}
	if exp.Stale != nil && entry.Stale != *exp.Stale {
		return mismatch("stale", *exp.Stale, entry.Stale)
	}
	if exp.Error != "" {
		if entry.Err == nil {
			return mismatch("error", exp.Error, "<nil>")
		}
		if !strings.Contains(entry.Err.Error(), exp.Error) {
			return mismatch("error", exp.Error, entry.Err.Error())
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
