package tagcache

import (
	"context"
	"slices"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

type entry struct {
	key   string
	query string
	args  domain.Args

	status    domain.Status
	data      any
	err       error
	provided  []domain.TaggedRef
	stale     bool
	settledAt time.Time

	subscribers int
	// waiters counts callers blocked on the read in flight.
	waiters int
	// generation identifies the read whose result may be stored.
	generation uint64
	cancel     context.CancelFunc
	gcTimer    *time.Timer
}

func newEntry(query, key string, args domain.Args) *entry {
	return &entry{
		key:   key,
		query: query,
		args:  args.Clone(),
	}
}

func (e *entry) transition(next domain.Status) (domain.Event, error) {
	if !e.status.CanTransition(next) {
		return domain.Event{}, zerr.With(zerr.With(domain.ErrInvalidTransition, "from", e.status.String()), "to", next.String())
	}
	ev := domain.Event{
		Kind: domain.EventTransition,
		Key:  e.key,
		Name: e.query,
		Args: e.args,
		From: e.status,
		To:   next,
		At:   time.Now(),
	}
	e.status = next
	return ev, nil
}

func (e *entry) stopTimer() {
	if e.gcTimer != nil {
		e.gcTimer.Stop()
		e.gcTimer = nil
	}
}

func (e *entry) snapshot() domain.CacheEntry {
	return domain.CacheEntry{
		Key:       e.key,
		Query:     e.query,
		Args:      e.args.Clone(),
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		Provided:  slices.Clone(e.provided),
		Stale:     e.stale,
		Mounted:   e.subscribers,
		SettledAt: e.settledAt,
	}
}
