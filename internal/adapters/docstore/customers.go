package docstore

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func getUser(t *tables, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	u, ok := t.users[id]
	if !ok {
		return nil, notFound(tableUsers, id)
	}
	return u, nil
}

func listUsers(t *tables, _ domain.Args) (any, error) {
	out := lo.Values(t.users)
	slices.SortFunc(out, byName(func(u domain.User) string { return u.Name }))
	return out, nil
}

func updateProfile(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	u, ok := t.users[id]
	if !ok {
		return nil, notFound(tableUsers, id)
	}
	if name := args.String("name"); name != "" {
		u.Name = name
	}
	if _, set := args["phone"]; set {
		u.Phone = args.String("phone")
	}
	if email := args.String("email"); email != "" {
		if !strings.Contains(email, "@") {
			return nil, zerr.With(domain.ErrInvalidArgument, "arg", "email")
		}
		for _, other := range t.users {
			if other.ID != id && strings.EqualFold(other.Email, email) {
				return nil, zerr.With(zerr.With(domain.ErrConflict, "table", tableUsers), "email", email)
			}
		}
		u.Email = email
	}
	t.users[id] = u
	return u, nil
}

func listAddresses(t *tables, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	return lo.Map(t.addressesByUser.ids(userID), func(id string, _ int) domain.Address {
		return t.addresses[id]
	}), nil
}

func addAddress(t *tx, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	if _, ok := t.users[userID]; !ok {
		return nil, notFound(tableUsers, userID)
	}
	a := domain.Address{ID: t.newID(), UserID: userID}
	for key, dst := range map[string]*string{
		"line1":      &a.Line1,
		"city":       &a.City,
		"postalCode": &a.PostalCode,
		"country":    &a.Country,
	} {
		if *dst, err = requireString(args, key); err != nil {
			return nil, err
		}
	}
	if lat, ok := args.Decimal("lat"); ok {
		f := lat.InexactFloat64()
		a.Lat = &f
	}
	if lng, ok := args.Decimal("lng"); ok {
		f := lng.InexactFloat64()
		a.Lng = &f
	}
	t.putAddress(a)
	return a, nil
}

func removeAddress(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	if _, ok := t.addresses[id]; !ok {
		return nil, notFound(tableAddresses, id)
	}
	t.deleteAddress(id)
	return id, nil
}

func getCart(t *tables, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	c, ok := t.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID, Lines: []domain.CartLine{}}, nil
	}
	c.Lines = slices.Clone(c.Lines)
	return c, nil
}

func addCartItem(t *tx, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	productID, err := requireString(args, "productId")
	if err != nil {
		return nil, err
	}
	quantity, err := requirePositive(args, "quantity")
	if err != nil {
		return nil, err
	}
	if _, ok := t.users[userID]; !ok {
		return nil, notFound(tableUsers, userID)
	}
	p, ok := t.products[productID]
	if !ok || !p.Active {
		return nil, notFound(tableProducts, productID)
	}

	c := t.carts[userID]
	c.UserID = userID
	i := slices.IndexFunc(c.Lines, func(l domain.CartLine) bool { return l.ProductID == productID })
	if i < 0 {
		c.Lines = append(c.Lines, domain.CartLine{ProductID: productID})
		i = len(c.Lines) - 1
	}
	c.Lines[i].Quantity += quantity
	if c.Lines[i].Quantity > p.Stock {
		return nil, zerr.With(zerr.With(domain.ErrOutOfStock, "product", productID), "available", p.Stock)
	}
	t.carts[userID] = c
	return c, nil
}

func removeCartItem(t *tx, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	productID, err := requireString(args, "productId")
	if err != nil {
		return nil, err
	}
	c, ok := t.carts[userID]
	if !ok {
		return nil, notFound(tableCarts, userID)
	}
	before := len(c.Lines)
	c.Lines = slices.DeleteFunc(c.Lines, func(l domain.CartLine) bool { return l.ProductID == productID })
	if len(c.Lines) == before {
		return nil, notFound(tableCarts, productID)
	}
	t.carts[userID] = c
	return c, nil
}

func listNotifications(t *tables, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	out := lo.Map(t.notificationsFor.ids(userID), func(id string, _ int) domain.Notification {
		return t.notifications[id]
	})
	slices.SortStableFunc(out, func(a, b domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func markNotificationRead(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	n, ok := t.notifications[id]
	if !ok {
		return nil, notFound(tableNotifications, id)
	}
	n.Read = true
	t.notifications[id] = n
	return n, nil
}
