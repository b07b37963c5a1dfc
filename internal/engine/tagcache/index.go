package tagcache

import (
	"slices"
	"time"

	"go.trai.ch/shelf/internal/core/domain"
)

// indexLocked replaces the references recorded for key.
func (l *Layer) indexLocked(key string, old, provided []domain.TaggedRef) {
	for _, ref := range old {
		l.unindexTagLocked(ref.Tag, key)
	}
	for _, ref := range provided {
		keys, ok := l.index[ref.Tag]
		if !ok {
			keys = make(map[string]struct{})
			l.index[ref.Tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (l *Layer) unindexTagLocked(tag domain.Tag, key string) {
	keys, ok := l.index[tag]
	if !ok {
		return
	}
	delete(keys, key)
	if len(keys) == 0 {
		delete(l.index, tag)
	}
}

// matchLocked returns the sorted keys of entries whose provided references intersect refs.
func (l *Layer) matchLocked(refs []domain.TaggedRef) []string {
	seen := make(map[string]struct{})
	for _, ref := range refs {
		for key := range l.index[ref.Tag] {
			if _, done := seen[key]; done {
				continue
			}
			e, ok := l.entries[key]
			if !ok {
				continue
			}
			if slices.ContainsFunc(e.provided, ref.Matches) {
				seen[key] = struct{}{}
			}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// removeLocked discards an entry and forgets any read in flight for it.
func (l *Layer) removeLocked(key string) domain.Event {
	e, ok := l.entries[key]
	if !ok {
		return domain.Event{}
	}
	e.stopTimer()
	l.indexLocked(key, e.provided, nil)
	delete(l.entries, key)
	l.flights.Forget(key)

	return domain.Event{
		Kind: domain.EventRemoved,
		Key:  key,
		Name: e.query,
		Args: e.args,
		From: e.status,
		To:   e.status,
		At:   time.Now(),
	}
}

// scheduleRemovalLocked starts the grace period of an entry without subscribers.
func (l *Layer) scheduleRemovalLocked(e *entry) []domain.Event {
	e.stopTimer()
	if l.keepUnusedFor <= 0 {
		return []domain.Event{l.removeLocked(e.key)}
	}
	e.gcTimer = time.AfterFunc(l.keepUnusedFor, func() {
		l.collect(e)
	})
	return nil
}

func (l *Layer) collect(e *entry) {
	l.mu.Lock()
	cur, ok := l.entries[e.key]
	if !ok || cur != e || e.subscribers > 0 || e.status == domain.StatusLoading {
		l.mu.Unlock()
		return
	}
	ev := l.removeLocked(e.key)
	l.mu.Unlock()

	l.publish(ev)
}
