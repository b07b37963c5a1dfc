package docstore

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

var hundred = decimal.NewFromInt(100)

// newestFirst orders by creation time, then id.
func newestFirst(a, b domain.Order) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

func listOrdersByUser(t *tables, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	out := lo.Map(t.ordersByUser.ids(userID), func(id string, _ int) domain.Order {
		return t.orders[id]
	})
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func listAllOrders(t *tables, _ domain.Args) (any, error) {
	out := lo.Values(t.orders)
	slices.SortFunc(out, newestFirst)
	return out, nil
}

func getOrder(t *tables, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	o, ok := t.orders[id]
	if !ok {
		return nil, notFound(tableOrders, id)
	}
	return domain.OrderDetail{Order: o, Items: t.itemsOf(id)}, nil
}

func listOrderItems(t *tables, args domain.Args) (any, error) {
	orderID, err := requireString(args, "orderId")
	if err != nil {
		return nil, err
	}
	if _, ok := t.orders[orderID]; !ok {
		return nil, notFound(tableOrders, orderID)
	}
	return t.itemsOf(orderID), nil
}

func (t *tables) itemsOf(orderID string) []domain.OrderItem {
	return lo.Map(t.itemsByOrder.ids(orderID), func(id string, _ int) domain.OrderItem {
		return t.orderItems[id]
	})
}

// discount returns the larger of the coupon discount and the best applicable cart rule.
func (t *tables) discount(subtotal decimal.Decimal, coupon *domain.Coupon) decimal.Decimal {
	percent := decimal.Zero
	if coupon != nil {
		percent = coupon.PercentOff
	}
	for _, rule := range t.cartRules {
		if subtotal.GreaterThanOrEqual(rule.MinSubtotal) && rule.PercentOff.GreaterThan(percent) {
			percent = rule.PercentOff
		}
	}
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

func (t *tables) couponByCode(code string) (domain.Coupon, bool) {
	return lo.Find(lo.Values(t.coupons), func(c domain.Coupon) bool { return c.Code == code })
}

// reprice recomputes the subtotal, discount and total of an order from its items.
func (t *tx) reprice(o *domain.Order) {
	subtotal := decimal.Zero
	for _, item := range t.itemsOf(o.ID) {
		subtotal = subtotal.Add(item.LineTotal())
	}
	var coupon *domain.Coupon
	if c, ok := t.couponByCode(o.CouponCode); ok && o.CouponCode != "" {
		coupon = &c
	}
	o.Subtotal = subtotal
	o.Discount = t.discount(subtotal, coupon)
	o.Total = subtotal.Sub(o.Discount)
	o.UpdatedAt = t.now
}

func (t *tx) takeStock(productID string, quantity int) (domain.Product, error) {
	p, ok := t.products[productID]
	if !ok || !p.Active {
		return domain.Product{}, notFound(tableProducts, productID)
	}
	if p.Stock < quantity {
		return domain.Product{}, zerr.With(zerr.With(domain.ErrOutOfStock, "product", productID), "available", p.Stock)
	}
	p.Stock -= quantity
	p.UpdatedAt = t.now
	t.products[productID] = p
	return p, nil
}

func (t *tx) notify(userID, message string) {
	t.putNotification(domain.Notification{
		ID:        t.newID(),
		UserID:    userID,
		Message:   message,
		CreatedAt: t.now,
	})
}

func createOrderItem(t *tx, args domain.Args) (any, error) {
	orderID, err := requireString(args, "orderId")
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

	o, ok := t.orders[orderID]
	if !ok {
		return nil, notFound(tableOrders, orderID)
	}
	if o.Status != domain.OrderPending {
		return nil, zerr.With(zerr.With(domain.ErrInvalidArgument, "order", orderID), "status", string(o.Status))
	}
	p, err := t.takeStock(productID, quantity)
	if err != nil {
		return nil, err
	}

	item := domain.OrderItem{
		ID:        t.newID(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: p.Price,
	}
	t.putOrderItem(item)
	t.reprice(&o)
	t.putOrder(o)
	return item, nil
}

// checkout turns the user's cart into a pending order and empties the cart.
func checkout(t *tx, args domain.Args) (any, error) {
	userID, err := requireString(args, "userId")
	if err != nil {
		return nil, err
	}
	if _, ok := t.users[userID]; !ok {
		return nil, notFound(tableUsers, userID)
	}
	addressID := args.String("addressId")
	if addressID != "" {
		if a, ok := t.addresses[addressID]; !ok || a.UserID != userID {
			return nil, notFound(tableAddresses, addressID)
		}
	}
	code := args.String("couponCode")
	if code != "" {
		c, ok := t.couponByCode(code)
		if !ok || !c.Usable(t.now) {
			return nil, zerr.With(domain.ErrCouponUnusable, "code", code)
		}
	}

	cart := t.carts[userID]
	if len(cart.Lines) == 0 {
		return nil, zerr.With(domain.ErrEmptyCart, "user", userID)
	}

	o := domain.Order{
		ID:         t.newID(),
		UserID:     userID,
		AddressID:  addressID,
		Status:     domain.OrderPending,
		CouponCode: code,
		CreatedAt:  t.now,
	}
	for _, line := range cart.Lines {
		p, err := t.takeStock(line.ProductID, line.Quantity)
		if err != nil {
			return nil, err
		}
		t.putOrderItem(domain.OrderItem{
			ID:        t.newID(),
			OrderID:   o.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
		})
	}
	t.reprice(&o)
	t.putOrder(o)
	delete(t.carts, userID)
	t.notify(userID, fmt.Sprintf("Order %s placed, total %s", o.ID, o.Total.StringFixed(2)))
	return o, nil
}

func touchOrder(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	o, ok := t.orders[id]
	if !ok {
		return nil, notFound(tableOrders, id)
	}
	o.UpdatedAt = t.now
	t.putOrder(o)
	return o, nil
}

func setOrderStatus(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	status := domain.OrderStatus(args.String("status"))
	if !status.Valid() {
		return nil, zerr.With(zerr.With(domain.ErrInvalidArgument, "arg", "status"), "value", string(status))
	}
	o, ok := t.orders[id]
	if !ok {
		return nil, notFound(tableOrders, id)
	}
	if o.Status == domain.OrderCancelled || o.Status == domain.OrderDelivered {
		return nil, zerr.With(zerr.With(domain.ErrConflict, "order", id), "status", string(o.Status))
	}

	if status == domain.OrderCancelled {
		for _, item := range t.itemsOf(id) {
			if p, ok := t.products[item.ProductID]; ok {
				p.Stock += item.Quantity
				t.products[item.ProductID] = p
			}
		}
	}
	o.Status = status
	o.UpdatedAt = t.now
	t.putOrder(o)
	t.notify(o.UserID, fmt.Sprintf("Order %s is now %s", id, status))
	return o, nil
}

func summarize(t *tables, _ domain.Args) (any, error) {
	customers := lo.CountBy(lo.Values(t.users), func(u domain.User) bool {
		return u.Role == domain.RoleCustomer
	})
	summary := domain.AnalyticsSummary{
		Revenue:   decimal.Zero,
		Products:  len(t.products),
		Customers: customers,
	}
	for _, o := range t.orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		summary.Orders++
		summary.Revenue = summary.Revenue.Add(o.Total)
	}
	return summary, nil
}
