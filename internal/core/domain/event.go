package domain

import "time"

// EventKind classifies data layer events.
type EventKind uint8

const (
	// EventTransition reports a cache entry status change.
	EventTransition EventKind = iota
	// EventInvalidated reports that a cache entry was marked stale.
	EventInvalidated
	// EventRemoved reports that a cache entry was discarded.
	EventRemoved
	// EventMutation reports a settled mutation and the references it invalidated.
	EventMutation
)

// String returns a short name for the kind.
func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventInvalidated:
		return "invalidated"
	case EventRemoved:
		return "removed"
	case EventMutation:
		return "mutation"
	default:
		return "unknown"
	}
}

// Event is published by the data layer to its listeners.
type Event struct {
	Kind EventKind
	// Key is the cache key; empty for mutations.
	Key string
	// Name is the query or mutation name.
	Name string
	Args Args
	From Status
	To   Status
	// Refs are the references a mutation invalidated.
	Refs []TaggedRef
	Err  error
	At   time.Time
}
