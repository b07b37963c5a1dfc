package tagcache

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// TagsFunc computes tagged references from a settled response.
// err is non-nil when the backend call failed; result is then usually nil.
type TagsFunc func(result any, err error, args domain.Args) []domain.TaggedRef

// QueryDef defines a cached read.
type QueryDef struct {
	Name string
	// ProvidesTags is evaluated once per settled response, success or error.
	ProvidesTags TagsFunc
}

// MutationDef defines a write.
type MutationDef struct {
	Name string
	// InvalidatesTags is evaluated once per settled response that may invalidate.
	InvalidatesTags TagsFunc
	// InvalidateOnError opts in to invalidation when the write fails.
	InvalidateOnError bool
}

// Endpoints lists registered endpoint names.
type Endpoints struct {
	Queries   []string
	Mutations []string
}

// RegisterQuery defines a cached read.
func (l *Layer) RegisterQuery(def QueryDef) error {
	if def.Name == "" {
		return zerr.With(domain.ErrInvalidEndpoint, "reason", "empty query name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isRegisteredLocked(def.Name) {
		return zerr.With(domain.ErrDuplicateEndpoint, "endpoint", def.Name)
	}
	l.queries[def.Name] = def
	return nil
}

// RegisterMutation defines a write.
func (l *Layer) RegisterMutation(def MutationDef) error {
	if def.Name == "" {
		return zerr.With(domain.ErrInvalidEndpoint, "reason", "empty mutation name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.isRegisteredLocked(def.Name) {
		return zerr.With(domain.ErrDuplicateEndpoint, "endpoint", def.Name)
	}
	l.mutations[def.Name] = def
	return nil
}

// Endpoints returns the sorted names of all registered queries and mutations.
func (l *Layer) Endpoints() Endpoints {
	l.mu.Lock()
	defer l.mu.Unlock()

	eps := Endpoints{
		Queries:   lo.Keys(l.queries),
		Mutations: lo.Keys(l.mutations),
	}
	slices.Sort(eps.Queries)
	slices.Sort(eps.Mutations)
	return eps
}

func (l *Layer) isRegisteredLocked(name string) bool {
	_, isQuery := l.queries[name]
	_, isMutation := l.mutations[name]
	return isQuery || isMutation
}

func (l *Layer) lookupQuery(name string, args domain.Args) (QueryDef, string, error) {
	l.mu.Lock()
	def, ok := l.queries[name]
	l.mu.Unlock()
	if !ok {
		return QueryDef{}, "", zerr.With(domain.ErrUnknownEndpoint, "query", name)
	}

	key, err := cacheKey(name, args)
	if err != nil {
		return QueryDef{}, "", err
	}
	return def, key, nil
}

// evalTags runs a tag function. A panicking function produces no tags.
// References outside the tag enumeration are dropped and duplicates collapsed.
func (l *Layer) evalTags(endpoint string, fn TagsFunc, result any, err error, args domain.Args) (refs []domain.TaggedRef) {
	if fn == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn(fmt.Sprintf("tags of %s: tag function panicked: %v", endpoint, r))
			refs = nil
		}
	}()

	refs = fn(result, err, args)
	valid := lo.Filter(refs, func(ref domain.TaggedRef, _ int) bool {
		return ref.Tag.Valid()
	})
	if len(valid) != len(refs) {
		l.logger.Warn(fmt.Sprintf("tags of %s: dropped %d reference(s) with unknown tags", endpoint, len(refs)-len(valid)))
	}
	return lo.Uniq(valid)
}
