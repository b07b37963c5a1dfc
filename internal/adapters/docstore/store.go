// Package docstore emulates the hosted document database and function platform in process.
//
// Documents live in typed tables. Named read functions run under a shared lock; named write
// functions run on a copy of the tables under the exclusive lock, and the copy replaces the
// live tables only when the function succeeds, so a failed write changes nothing.
package docstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/zerr"
)

type readFunc func(t *tables, args domain.Args) (any, error)

type writeFunc func(tx *tx, args domain.Args) (any, error)

// tx is the state a write function operates on.
type tx struct {
	*tables
	now   time.Time
	newID func() string
}

// Store implements ports.Transport over in-memory tables.
type Store struct {
	mu        sync.RWMutex
	tables    *tables
	queries   map[string]readFunc
	mutations map[string]writeFunc

	snapshots ports.SnapshotStore
	latency   time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDs overrides the document id generator.
func WithIDs(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// New creates an empty store. snapshots may be nil when persistence is not needed.
func New(snapshots ports.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		tables:    newTables(),
		snapshots: snapshots,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queries = s.readFunctions()
	s.mutations = s.writeFunctions()
	return s
}

// SetLatency adds a fixed delay to every function call.
func (s *Store) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Query runs a read function.
func (s *Store) Query(ctx context.Context, name string, args domain.Args) (any, error) {
	fn, ok := s.queries[name]
	if !ok {
		return nil, zerr.With(domain.ErrUnknownFunction, "function", name)
	}
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := fn(s.tables, args)
	if err != nil {
		return nil, zerr.With(err, "function", name)
	}
	return res, nil
}

// Mutate runs a write function.
func (s *Store) Mutate(ctx context.Context, name string, args domain.Args) (any, error) {
	fn, ok := s.mutations[name]
	if !ok {
		return nil, zerr.With(domain.ErrUnknownFunction, "function", name)
	}
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{tables: s.tables.clone(), now: s.now(), newID: s.newID}
	res, err := fn(t, args)
	if err != nil {
		return nil, zerr.With(err, "function", name)
	}
	s.tables = t.tables
	return res, nil
}

// Functions returns the sorted names of all read and write functions.
func (s *Store) Functions() (queries, mutations []string) {
	return slices.Sorted(maps.Keys(s.queries)), slices.Sorted(maps.Keys(s.mutations))
}

// Load replaces every table with the documents in ds. Documents without ids are assigned one.
func (s *Store) Load(ds *domain.Dataset) error {
	next, err := seed(ds, s.newID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = next
	return nil
}

// Dataset returns a copy of every table.
func (s *Store) Dataset() *domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.dataset()
}

func (s *Store) delay(ctx context.Context) error {
	s.mu.RLock()
	d := s.latency
	s.mu.RUnlock()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
