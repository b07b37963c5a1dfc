package tagcache

import (
	"context"
	"sync/atomic"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// Subscription is one consumer's claim on a cached query. The entry is kept while at
// least one subscription is held.
type Subscription struct {
	layer *Layer
	name  string
	key   string
	args  domain.Args

	released atomic.Bool
}

// Subscribe mounts a consumer on a query and waits for the entry to settle.
func (l *Layer) Subscribe(ctx context.Context, name string, args domain.Args) (*Subscription, domain.CacheEntry, error) {
	_, key, err := l.lookupQuery(name, args)
	if err != nil {
		return nil, domain.CacheEntry{}, err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, domain.CacheEntry{}, zerr.With(domain.ErrLayerClosed, "query", name)
	}
	e, ok := l.entries[key]
	if !ok {
		e = newEntry(name, key, args)
		l.entries[key] = e
	}
	e.subscribers++
	e.stopTimer()
	l.mu.Unlock()

	sub := &Subscription{layer: l, name: name, key: key, args: args.Clone()}
	snap, err := l.Invoke(ctx, name, args)
	if err != nil {
		sub.Unsubscribe()
		return nil, domain.CacheEntry{}, err
	}
	return sub, snap, nil
}

// Name returns the subscribed query name.
func (s *Subscription) Name() string {
	return s.name
}

// Key returns the cache key of the subscribed entry.
func (s *Subscription) Key() string {
	return s.key
}

// Entry returns the subscribed entry.
func (s *Subscription) Entry() (domain.CacheEntry, error) {
	if s.isReleased() {
		return domain.CacheEntry{}, zerr.With(domain.ErrSubscriptionClosed, "query", s.name)
	}
	snap, ok := s.layer.Peek(s.name, s.args)
	if !ok {
		return domain.CacheEntry{}, zerr.With(domain.ErrSubscriptionClosed, "query", s.name)
	}
	return snap, nil
}

// Refetch forces a new read of the subscribed entry.
func (s *Subscription) Refetch(ctx context.Context) (domain.CacheEntry, error) {
	if s.isReleased() {
		return domain.CacheEntry{}, zerr.With(domain.ErrSubscriptionClosed, "query", s.name)
	}
	return s.layer.Retry(ctx, s.name, s.args)
}

// Unsubscribe releases the subscription. Releasing the last subscription of an entry
// cancels its pending read, unless Invoke callers are waiting on it, and starts the
// entry's grace period. Repeated calls are no-ops.
func (s *Subscription) Unsubscribe() {
	if s.released.Swap(true) {
		return
	}
	s.layer.release(s.key)
}

func (s *Subscription) isReleased() bool {
	return s.released.Load()
}

func (l *Layer) release(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		return
	}
	e.subscribers--
	if e.subscribers > 0 {
		l.mu.Unlock()
		return
	}

	var events []domain.Event
	switch {
	case e.status == domain.StatusLoading && e.waiters > 0:
		// Invoke callers still wait on the read; it settles and starts the grace period.
	case e.status == domain.StatusLoading || e.status == domain.StatusUninitialized:
		// Nothing settled worth keeping.
		if e.cancel != nil {
			e.cancel()
		}
		events = append(events, l.removeLocked(key))
	default:
		events = l.scheduleRemovalLocked(e)
	}
	l.mu.Unlock()

	l.publish(events...)
}
