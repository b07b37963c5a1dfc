package domain

import "go.trai.ch/zerr"

// Tag is a category of cached data. Queries provide tags, mutations invalidate them.
//
// The set of tags is closed: it is declared here once and shared by the storefront
// and the admin dashboard endpoints.
type Tag uint8

const (
	// TagProducts covers catalog products.
	TagProducts Tag = iota + 1
	// TagCategories covers catalog categories.
	TagCategories
	// TagCart covers a customer's shopping cart.
	TagCart
	// TagOrders covers orders and their items.
	TagOrders
	// TagUser covers the signed-in customer's own profile and addresses.
	TagUser
	// TagUsers covers the admin view of all customers.
	TagUsers
	// TagSearch covers product search results.
	TagSearch
	// TagCoupons covers coupon codes.
	TagCoupons
	// TagCartRules covers automatic cart discount rules.
	TagCartRules
	// TagAnalytics covers dashboard aggregates.
	TagAnalytics
	// TagNotifications covers per-user notifications.
	TagNotifications
)

var tagNames = [...]string{
	TagProducts:      "Products",
	TagCategories:    "Categories",
	TagCart:          "Cart",
	TagOrders:        "Orders",
	TagUser:          "User",
	TagUsers:         "Users",
	TagSearch:        "Search",
	TagCoupons:       "Coupons",
	TagCartRules:     "CartRules",
	TagAnalytics:     "Analytics",
	TagNotifications: "Notifications",
}

// AllTags returns every tag in declaration order.
func AllTags() []Tag {
	tags := make([]Tag, 0, len(tagNames)-1)
	for t := TagProducts; int(t) < len(tagNames); t++ {
		tags = append(tags, t)
	}
	return tags
}

// Valid reports whether t is a member of the enumeration.
func (t Tag) Valid() bool {
	return t > 0 && int(t) < len(tagNames)
}

// String returns the tag's declared name.
func (t Tag) String() string {
	if !t.Valid() {
		return "Tag(invalid)"
	}
	return tagNames[t]
}

// ParseTag returns the tag with the given name. Names are case-sensitive.
func ParseTag(name string) (Tag, error) {
	for _, t := range AllTags() {
		if tagNames[t] == name {
			return t, nil
		}
	}
	return 0, zerr.With(ErrUnknownTag, "tag", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, ErrUnknownTag
	}
	return []byte(tagNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := ParseTag(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
