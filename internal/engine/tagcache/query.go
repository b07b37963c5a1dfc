package tagcache

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
)

// Invoke returns the settled entry for a query, fetching it when the entry is missing,
// uninitialized or stale. Concurrent callers with equal arguments share one backend read.
//
// Backend failures are reported through the entry's status and Err fields. The error
// return is reserved for unknown endpoints, unencodable arguments and ctx cancellation.
// A read shared with subscribers is not cancelled when they unmount while Invoke waits.
func (l *Layer) Invoke(ctx context.Context, name string, args domain.Args) (domain.CacheEntry, error) {
	def, key, err := l.lookupQuery(name, args)
	if err != nil {
		return domain.CacheEntry{}, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.CacheEntry{}, zerr.With(domain.ErrLayerClosed, "query", name)
	}
	e, ok := l.entries[key]
	if ok && e.status.Settled() && !e.stale {
		snap := e.snapshot()
		l.mu.Unlock()
		return snap, nil
	}
	if !ok {
		l.entries[key] = newEntry(name, key, args)
	}
	l.mu.Unlock()

	return l.fetch(ctx, def, key, args)
}

// Retry refetches a query regardless of its current status.
// It joins the read already in flight, if any.
func (l *Layer) Retry(ctx context.Context, name string, args domain.Args) (domain.CacheEntry, error) {
	def, key, err := l.lookupQuery(name, args)
	if err != nil {
		return domain.CacheEntry{}, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.CacheEntry{}, zerr.With(domain.ErrLayerClosed, "query", name)
	}
	if _, ok := l.entries[key]; !ok {
		l.entries[key] = newEntry(name, key, args)
	}
	l.mu.Unlock()

	return l.fetch(ctx, def, key, args)
}

func (l *Layer) fetch(ctx context.Context, def QueryDef, key string, args domain.Args) (domain.CacheEntry, error) {
	// Waiters keep the read alive when the last subscriber leaves.
	l.mu.Lock()
	e := l.entries[key]
	if e != nil {
		e.waiters++
	}
	l.mu.Unlock()
	if e != nil {
		defer func() {
			l.mu.Lock()
			e.waiters--
			l.mu.Unlock()
		}()
	}

	ch := l.flights.DoChan(key, func() (any, error) {
		return l.read(def, key, args), nil
	})

	select {
	case res := <-ch:
		snap, ok := res.Val.(domain.CacheEntry)
		if !ok {
			return domain.CacheEntry{}, zerr.With(domain.ErrInvalidTransition, "query", def.Name)
		}
		return snap, nil
	case <-ctx.Done():
		return domain.CacheEntry{}, ctx.Err()
	}
}

// read performs one backend read and stores its result unless the entry was invalidated,
// discarded or superseded in the meantime.
func (l *Layer) read(def QueryDef, key string, args domain.Args) domain.CacheEntry {
	var events []domain.Event

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = newEntry(def.Name, key, args)
		l.entries[key] = e
	}
	if e.status != domain.StatusLoading {
		ev, err := e.transition(domain.StatusLoading)
		if err != nil {
			l.mu.Unlock()
			l.logger.Error(err)
			return e.snapshot()
		}
		events = append(events, ev)
	}
	e.generation++
	gen := e.generation
	e.stale = false
	readCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	l.mu.Unlock()
	l.publish(events...)

	spanCtx, span := l.tracer.Start(readCtx, def.Name, ports.WithSpanKind("query"))
	span.SetAttribute("cache.key", key)
	result, err := l.transport.Query(spanCtx, def.Name, args)
	if err != nil {
		span.RecordError(err)
	}
	span.End()
	cancel()

	provided := l.evalTags(def.Name, def.ProvidesTags, result, err, args)

	l.mu.Lock()
	cur, ok := l.entries[key]
	if !ok || cur != e || e.generation != gen {
		// Invalidated or discarded while in flight: hand the result to the callers of
		// this read without storing it.
		snap := e.snapshot()
		l.mu.Unlock()
		snap.Stale = true
		snap.Data = result
		snap.Err = err
		snap.Status = settledStatus(err)
		return snap
	}

	next := settledStatus(err)
	ev, terr := e.transition(next)
	if terr != nil {
		snap := e.snapshot()
		l.mu.Unlock()
		l.logger.Error(terr)
		return snap
	}
	events = []domain.Event{ev}
	if err == nil {
		e.data = result
		e.err = nil
	} else {
		ev.Err = err
		events[0] = ev
		e.err = err
	}
	l.indexLocked(key, e.provided, provided)
	e.provided = provided
	e.settledAt = time.Now()
	e.cancel = nil
	if e.subscribers == 0 {
		events = append(events, l.scheduleRemovalLocked(e)...)
	}
	snap := e.snapshot()
	l.mu.Unlock()

	if err != nil {
		l.logger.Warn(fmt.Sprintf("query %s failed: %v", def.Name, err))
	}
	l.publish(events...)
	return snap
}

func settledStatus(err error) domain.Status {
	if err != nil {
		return domain.StatusError
	}
	return domain.StatusSuccess
}
