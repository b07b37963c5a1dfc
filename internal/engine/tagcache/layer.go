// Package tagcache implements the tagged data-access layer.
//
// Queries declare the tagged references their results provide and mutations declare the
// references they invalidate. When a mutation settles, every cached query whose provided
// references intersect the invalidated set is marked stale: mounted entries are refetched
// before the mutation returns and unmounted entries are discarded.
//
// All entry state lives behind a single mutex, which stands in for the single logical
// thread of a UI event loop. Backend calls run outside the lock.
package tagcache

import (
	"slices"
	"sync"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Listener receives data layer events. Listeners run on the goroutine that caused the
// event and must not call back into the Layer.
type Listener func(domain.Event)

// Layer is the tagged data-access layer.
type Layer struct {
	transport     ports.Transport
	tracer        ports.Tracer
	logger        ports.Logger
	keepUnusedFor time.Duration

	mu        sync.Mutex
	queries   map[string]QueryDef
	mutations map[string]MutationDef
	entries   map[string]*entry
	index     map[domain.Tag]map[string]struct{} // tag -> cache keys that provided it
	listeners []Listener
	closed    bool

	flights singleflight.Group
}

// Option configures a Layer.
type Option func(*Layer)

// WithKeepUnusedFor sets how long an entry without subscribers is kept.
// Zero or negative durations discard unused entries as soon as they settle.
func WithKeepUnusedFor(d time.Duration) Option {
	return func(l *Layer) {
		l.keepUnusedFor = d
	}
}

// WithListener registers a listener at construction time.
func WithListener(fn Listener) Option {
	return func(l *Layer) {
		l.listeners = append(l.listeners, fn)
	}
}

// New creates a Layer that reads and writes through transport.
func New(transport ports.Transport, tracer ports.Tracer, logger ports.Logger, opts ...Option) *Layer {
	l := &Layer{
		transport:     transport,
		tracer:        tracer,
		logger:        logger,
		keepUnusedFor: domain.DefaultKeepUnusedFor,
		queries:       make(map[string]QueryDef),
		mutations:     make(map[string]MutationDef),
		entries:       make(map[string]*entry),
		index:         make(map[domain.Tag]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddListener registers fn for all subsequent events.
func (l *Layer) AddListener(fn Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Peek returns the current entry for a query without fetching.
func (l *Layer) Peek(name string, args domain.Args) (domain.CacheEntry, bool) {
	key, err := cacheKey(name, args)
	if err != nil {
		return domain.CacheEntry{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return e.snapshot(), true
}

// Entries returns a snapshot of every cache entry ordered by key.
func (l *Layer) Entries() []domain.CacheEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.CacheEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.snapshot())
	}
	slices.SortFunc(out, func(a, b domain.CacheEntry) int {
		if a.Query != b.Query {
			if a.Query < b.Query {
				return -1
			}
			return 1
		}
		if a.Key < b.Key {
			return -1
		}
		if a.Key > b.Key {
			return 1
		}
		return 0
	})
	return out
}

// Close discards every entry and stops pending removals.
// Reads still in flight complete but their results are dropped.
func (l *Layer) Close() {
	l.mu.Lock()
	events := make([]domain.Event, 0, len(l.entries))
	for key := range l.entries {
		events = append(events, l.removeLocked(key))
	}
	l.closed = true
	l.mu.Unlock()

	l.publish(events...)
}

func (l *Layer) publish(events ...domain.Event) {
	if len(events) == 0 {
		return
	}

	l.mu.Lock()
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}
