package tagcache

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// InvokeMutation runs a write. When it settles, the references computed by the mutation's
// tag function are invalidated and InvokeMutation waits for mounted entries to refetch.
//
// The backend result and error are returned as is. Refetch failures are recorded on the
// affected entries and do not fail the mutation.
func (l *Layer) InvokeMutation(ctx context.Context, name string, args domain.Args) (any, error) {
	l.mu.Lock()
	def, ok := l.mutations[name]
	closed := l.closed
	l.mu.Unlock()
	if !ok {
		return nil, zerr.With(domain.ErrUnknownEndpoint, "mutation", name)
	}
	if closed {
		return nil, zerr.With(domain.ErrLayerClosed, "mutation", name)
	}

	spanCtx, span := l.tracer.Start(ctx, name, ports.WithSpanKind("mutation"))
	result, err := l.transport.Mutate(spanCtx, name, args)
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	var refs []domain.TaggedRef
	if err == nil || def.InvalidateOnError {
		refs = l.evalTags(name, def.InvalidatesTags, result, err, args)
	}
	if err != nil {
		l.logger.Warn(fmt.Sprintf("mutation %s failed: %v", name, err))
	}

	l.publish(domain.Event{
		Kind: domain.EventMutation,
		Name: name,
		Args: args.Clone(),
		Refs: refs,
		Err:  err,
		At:   time.Now(),
	})

	if len(refs) > 0 {
		if ierr := l.Invalidate(ctx, refs...); ierr != nil && err == nil {
			return result, ierr
		}
	}
	return result, err
}

type refetch struct {
	def  QueryDef
	key  string
	args domain.Args
}

// Invalidate marks every entry matching refs stale. Entries without subscribers are
// discarded and mounted entries are refetched; Invalidate returns once the refetches settle.
func (l *Layer) Invalidate(ctx context.Context, refs ...domain.TaggedRef) error {
	if len(refs) == 0 {
		return nil
	}

	var (
		events  []domain.Event
		pending []refetch
	)

	l.mu.Lock()
	for _, key := range l.matchLocked(refs) {
		e := l.entries[key]
		e.stale = true
		events = append(events, domain.Event{
			Kind: domain.EventInvalidated,
			Key:  key,
			Name: e.query,
			Args: e.args,
			From: e.status,
			To:   e.status,
			Refs: refs,
			At:   time.Now(),
		})

		if e.subscribers == 0 {
			events = append(events, l.removeLocked(key))
			continue
		}

		// A read already in flight may predate the write, so it must not settle the entry.
		e.generation++
		l.flights.Forget(key)
		pending = append(pending, refetch{def: l.queries[e.query], key: key, args: e.args})
	}
	l.mu.Unlock()
	l.publish(events...)

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range pending {
		g.Go(func() error {
			_, err := l.fetch(gctx, r.def, r.key, r.args)
			return err
		})
	}
	return g.Wait()
}

// InvalidateAll marks every entry stale.
func (l *Layer) InvalidateAll(ctx context.Context) error {
	refs := make([]domain.TaggedRef, 0, len(domain.AllTags()))
	for _, tag := range domain.AllTags() {
		refs = append(refs, domain.Ref(tag))
	}
	return l.Invalidate(ctx, refs...)
}
