package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ListID is the conventional instance key for "the list of this category".
// It is an ordinary key and matches nothing special.
const ListID = "LIST"

// TaggedRef pairs a tag with an optional instance key.
// An empty ID denotes the whole category.
type TaggedRef struct {
	Tag Tag
	ID  string
}

// Ref returns a category-wide reference.
func Ref(tag Tag) TaggedRef {
	return TaggedRef{Tag: tag}
}

// RefID returns a reference scoped to a single entity.
func RefID(tag Tag, id string) TaggedRef {
	return TaggedRef{Tag: tag, ID: id}
}

// ListRef returns the reference for the list of a category.
func ListRef(tag Tag) TaggedRef {
	return TaggedRef{Tag: tag, ID: ListID}
}

// IsCategory reports whether the reference covers the whole category.
func (r TaggedRef) IsCategory() bool {
	return r.ID == ""
}

// Matches reports whether invalidating r invalidates an entry that provided p.
//
// A category-wide r matches every p with the same tag. A keyed r matches a p with the
// same tag and key, or a category-wide p with the same tag.
func (r TaggedRef) Matches(p TaggedRef) bool {
	if r.Tag != p.Tag {
		return false
	}
	return r.ID == "" || p.ID == "" || r.ID == p.ID
}

// String renders the reference as "Tag" or "Tag:id".
func (r TaggedRef) String() string {
	if r.ID == "" {
		return r.Tag.String()
	}
	return r.Tag.String() + ":" + r.ID
}

// ParseTaggedRef parses the String form of a reference.
func ParseTaggedRef(s string) (TaggedRef, error) {
	name, id, _ := strings.Cut(s, ":")
	tag, err := ParseTag(name)
	if err != nil {
		return TaggedRef{}, zerr.With(err, "ref", s)
	}
	return TaggedRef{Tag: tag, ID: id}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r TaggedRef) MarshalText() ([]byte, error) {
	if !r.Tag.Valid() {
		return nil, ErrUnknownTag
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *TaggedRef) UnmarshalText(text []byte) error {
	parsed, err := ParseTaggedRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// AnyMatch reports whether any invalidated reference matches any provided reference.
func AnyMatch(invalidated, provided []TaggedRef) bool {
	for _, inv := range invalidated {
		for _, p := range provided {
			if inv.Matches(p) {
				return true
			}
		}
	}
	return false
}
