package api

import (
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/engine/tagcache"
)

// identified is implemented by the documents a list query returns.
type identified interface {
	domain.Product | domain.Category | domain.Order | domain.User | domain.Coupon | domain.CartRule
}

func idOf[T identified](doc T) string {
	switch d := any(doc).(type) {
	case domain.Product:
		return d.ID
	case domain.Category:
		return d.ID
	case domain.Order:
		return d.ID
	case domain.User:
		return d.ID
	case domain.Coupon:
		return d.ID
	case domain.CartRule:
		return d.ID
	}
	return ""
}

// list provides (tag, LIST) plus one (item, id) reference per returned document.
// An errored list still provides (tag, LIST) so that a later create retries it.
func list[T identified](tag, item domain.Tag) tagcache.TagsFunc {
	return func(result any, _ error, _ domain.Args) []domain.TaggedRef {
		refs := []domain.TaggedRef{domain.ListRef(tag)}
		docs, _ := result.([]T)
		for _, doc := range docs {
			refs = append(refs, domain.RefID(item, idOf(doc)))
		}
		return refs
	}
}

// byArg references tag keyed by the value of an argument.
func byArg(tag domain.Tag, key string) tagcache.TagsFunc {
	return func(_ any, _ error, args domain.Args) []domain.TaggedRef {
		id := args.String(key)
		if id == "" {
			return nil
		}
		return []domain.TaggedRef{domain.RefID(tag, id)}
	}
}

// byArgOrAll references tag keyed by an argument, or the whole category when it is absent.
func byArgOrAll(tag domain.Tag, key string) tagcache.TagsFunc {
	return func(_ any, _ error, args domain.Args) []domain.TaggedRef {
		if id := args.String(key); id != "" {
			return []domain.TaggedRef{domain.RefID(tag, id)}
		}
		return []domain.TaggedRef{domain.Ref(tag)}
	}
}

// byResult references tag keyed by a field of a successful result of type T.
func byResult[T any](tag domain.Tag, id func(T) string) tagcache.TagsFunc {
	return func(result any, _ error, _ domain.Args) []domain.TaggedRef {
		doc, ok := result.(T)
		if !ok || id(doc) == "" {
			return nil
		}
		return []domain.TaggedRef{domain.RefID(tag, id(doc))}
	}
}

func static(refs ...domain.TaggedRef) tagcache.TagsFunc {
	return func(any, error, domain.Args) []domain.TaggedRef {
		return refs
	}
}

func combine(fns ...tagcache.TagsFunc) tagcache.TagsFunc {
	return func(result any, err error, args domain.Args) []domain.TaggedRef {
		var refs []domain.TaggedRef
		for _, fn := range fns {
			refs = append(refs, fn(result, err, args)...)
		}
		return refs
	}
}
