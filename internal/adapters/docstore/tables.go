package docstore

import (
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// Table names, also used as snapshot keys.
const (
	tableProducts      = "products"
	tableCategories    = "categories"
	tableOrders        = "orders"
	tableOrderItems    = "orderItems"
	tableUsers         = "users"
	tableAddresses     = "addresses"
	tableCoupons       = "coupons"
	tableCartRules     = "cartRules"
	tableCarts         = "carts"
	tableNotifications = "notifications"
)

// Tables lists every table name in snapshot order.
func Tables() []string {
	return []string{
		tableProducts, tableCategories, tableOrders, tableOrderItems, tableUsers,
		tableAddresses, tableCoupons, tableCartRules, tableCarts, tableNotifications,
	}
}

// index maps a foreign key to the ids of the documents referencing it.
type index map[string]map[string]struct{}

func (ix index) add(key, id string) {
	ids, ok := ix[key]
	if !ok {
		ids = make(map[string]struct{})
		ix[key] = ids
	}
	ids[id] = struct{}{}
}

func (ix index) remove(key, id string) {
	ids, ok := ix[key]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(ix, key)
	}
}

func (ix index) ids(key string) []string {
	return slices.Sorted(maps.Keys(ix[key]))
}

func (ix index) clone() index {
	out := make(index, len(ix))
	for k, ids := range ix {
		out[k] = maps.Clone(ids)
	}
	return out
}

type tables struct {
	products      map[string]domain.Product
	categories    map[string]domain.Category
	orders        map[string]domain.Order
	orderItems    map[string]domain.OrderItem
	users         map[string]domain.User
	addresses     map[string]domain.Address
	coupons       map[string]domain.Coupon
	cartRules     map[string]domain.CartRule
	carts         map[string]domain.Cart // keyed by user id
	notifications map[string]domain.Notification

	ordersByUser     index
	itemsByOrder     index
	addressesByUser  index
	notificationsFor index
}

func newTables() *tables {
	return &tables{
		products:         make(map[string]domain.Product),
		categories:       make(map[string]domain.Category),
		orders:           make(map[string]domain.Order),
		orderItems:       make(map[string]domain.OrderItem),
		users:            make(map[string]domain.User),
		addresses:        make(map[string]domain.Address),
		coupons:          make(map[string]domain.Coupon),
		cartRules:        make(map[string]domain.CartRule),
		carts:            make(map[string]domain.Cart),
		notifications:    make(map[string]domain.Notification),
		ordersByUser:     make(index),
		itemsByOrder:     make(index),
		addressesByUser:  make(index),
		notificationsFor: make(index),
	}
}

func (t *tables) clone() *tables {
	carts := make(map[string]domain.Cart, len(t.carts))
	for id, c := range t.carts {
		c.Lines = slices.Clone(c.Lines)
		carts[id] = c
	}
	return &tables{
		products:         maps.Clone(t.products),
		categories:       maps.Clone(t.categories),
		orders:           maps.Clone(t.orders),
		orderItems:       maps.Clone(t.orderItems),
		users:            maps.Clone(t.users),
		addresses:        maps.Clone(t.addresses),
		coupons:          maps.Clone(t.coupons),
		cartRules:        maps.Clone(t.cartRules),
		carts:            carts,
		notifications:    maps.Clone(t.notifications),
		ordersByUser:     t.ordersByUser.clone(),
		itemsByOrder:     t.itemsByOrder.clone(),
		addressesByUser:  t.addressesByUser.clone(),
		notificationsFor: t.notificationsFor.clone(),
	}
}

func (t *tables) putOrder(o domain.Order) {
	if prev, ok := t.orders[o.ID]; ok {
		t.ordersByUser.remove(prev.UserID, o.ID)
	}
	t.orders[o.ID] = o
	t.ordersByUser.add(o.UserID, o.ID)
}

func (t *tables) putOrderItem(item domain.OrderItem) {
	t.orderItems[item.ID] = item
	t.itemsByOrder.add(item.OrderID, item.ID)
}

func (t *tables) putAddress(a domain.Address) {
	t.addresses[a.ID] = a
	t.addressesByUser.add(a.UserID, a.ID)
}

func (t *tables) deleteAddress(id string) {
	if a, ok := t.addresses[id]; ok {
		t.addressesByUser.remove(a.UserID, id)
		delete(t.addresses, id)
	}
}

func (t *tables) putNotification(n domain.Notification) {
	t.notifications[n.ID] = n
	t.notificationsFor.add(n.UserID, n.ID)
}

// seed builds tables from a dataset, assigning ids to documents that lack one.
func seed(ds *domain.Dataset, newID func() string) (*tables, error) {
	t := newTables()
	if ds == nil {
		return t, nil
	}

	assign := func(table, id string, seen map[string]struct{}) (string, error) {
		if id == "" {
			id = newID()
		}
		if _, dup := seen[id]; dup {
			return "", zerr.With(zerr.With(domain.ErrConflict, "table", table), "id", id)
		}
		seen[id] = struct{}{}
		return id, nil
	}

	var err error
	seen := make(map[string]struct{})
	for _, p := range ds.Products {
		if p.ID, err = assign(tableProducts, p.ID, seen); err != nil {
			return nil, err
		}
		if p.Slug == "" {
			p.Slug = slugify(p.Name)
		}
		t.products[p.ID] = p
	}
	seen = make(map[string]struct{})
	for _, c := range ds.Categories {
		if c.ID, err = assign(tableCategories, c.ID, seen); err != nil {
			return nil, err
		}
		if c.Slug == "" {
			c.Slug = slugify(c.Name)
		}
		t.categories[c.ID] = c
	}
	seen = make(map[string]struct{})
	for _, o := range ds.Orders {
		if o.ID, err = assign(tableOrders, o.ID, seen); err != nil {
			return nil, err
		}
		if o.Status == "" {
			o.Status = domain.OrderPending
		}
		t.putOrder(o)
	}
	seen = make(map[string]struct{})
	for _, item := range ds.OrderItems {
		if item.ID, err = assign(tableOrderItems, item.ID, seen); err != nil {
			return nil, err
		}
		t.putOrderItem(item)
	}
	seen = make(map[string]struct{})
	for _, u := range ds.Users {
		if u.ID, err = assign(tableUsers, u.ID, seen); err != nil {
			return nil, err
		}
		if u.Role == "" {
			u.Role = domain.RoleCustomer
		}
		t.users[u.ID] = u
	}
	seen = make(map[string]struct{})
	for _, a := range ds.Addresses {
		if a.ID, err = assign(tableAddresses, a.ID, seen); err != nil {
			return nil, err
		}
		t.putAddress(a)
	}
	seen = make(map[string]struct{})
	for _, c := range ds.Coupons {
		if c.ID, err = assign(tableCoupons, c.ID, seen); err != nil {
			return nil, err
		}
		t.coupons[c.ID] = c
	}
	seen = make(map[string]struct{})
	for _, r := range ds.CartRules {
		if r.ID, err = assign(tableCartRules, r.ID, seen); err != nil {
			return nil, err
		}
		t.cartRules[r.ID] = r
	}
	for _, c := range ds.Carts {
		if c.UserID == "" {
			return nil, zerr.With(domain.ErrInvalidArgument, "table", tableCarts)
		}
		c.Lines = slices.Clone(c.Lines)
		t.carts[c.UserID] = c
	}
	seen = make(map[string]struct{})
	for _, n := range ds.Notifications {
		if n.ID, err = assign(tableNotifications, n.ID, seen); err != nil {
			return nil, err
		}
		t.putNotification(n)
	}
	return t, nil
}

// dataset copies every table into a Dataset with documents ordered by id.
func (t *tables) dataset() *domain.Dataset {
	carts := sortedValues(t.carts, func(c domain.Cart) string { return c.UserID })
	for i := range carts {
		carts[i].Lines = slices.Clone(carts[i].Lines)
	}
	return &domain.Dataset{
		Products:      sortedValues(t.products, func(p domain.Product) string { return p.ID }),
		Categories:    sortedValues(t.categories, func(c domain.Category) string { return c.ID }),
		Orders:        sortedValues(t.orders, func(o domain.Order) string { return o.ID }),
		OrderItems:    sortedValues(t.orderItems, func(i domain.OrderItem) string { return i.ID }),
		Users:         sortedValues(t.users, func(u domain.User) string { return u.ID }),
		Addresses:     sortedValues(t.addresses, func(a domain.Address) string { return a.ID }),
		Coupons:       sortedValues(t.coupons, func(c domain.Coupon) string { return c.ID }),
		CartRules:     sortedValues(t.cartRules, func(r domain.CartRule) string { return r.ID }),
		Carts:         carts,
		Notifications: sortedValues(t.notifications, func(n domain.Notification) string { return n.ID }),
	}
}

func sortedValues[T any](m map[string]T, key func(T) string) []T {
	out := lo.Values(m)
	slices.SortFunc(out, func(a, b T) int {
		return strings.Compare(key(a), key(b))
	})
	return out
}

// slugify lower-cases name and joins its alphanumeric runs with dashes.
func slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(fields, "-")
}
