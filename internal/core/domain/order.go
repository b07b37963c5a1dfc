package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	// OrderPending is a placed but unpaid order.
	OrderPending OrderStatus = "pending"
	// OrderPaid is a paid order awaiting shipment.
	OrderPaid OrderStatus = "paid"
	// OrderShipped is an order handed to the carrier.
	OrderShipped OrderStatus = "shipped"
	// OrderDelivered is a completed order.
	OrderDelivered OrderStatus = "delivered"
	// OrderCancelled is a cancelled order.
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

// Order is a placed customer order.
type Order struct {
	ID         string          `json:"id" yaml:"id"`
	UserID     string          `json:"userId" yaml:"userId"`
	AddressID  string          `json:"addressId,omitempty" yaml:"addressId"`
	Status     OrderStatus     `json:"status" yaml:"status"`
	Subtotal   decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	Discount   decimal.Decimal `json:"discount" yaml:"discount"`
	Total      decimal.Decimal `json:"total" yaml:"total"`
	CouponCode string          `json:"couponCode,omitempty" yaml:"couponCode"`
	CreatedAt  time.Time       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        string          `json:"id" yaml:"id"`
	OrderID   string          `json:"orderId" yaml:"orderId"`
	ProductID string          `json:"productId" yaml:"productId"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" yaml:"unitPrice"`
}

// LineTotal returns quantity times unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderDetail is an order together with its items.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// CartLine is one product in a cart.
type CartLine struct {
	ProductID string `json:"productId" yaml:"productId"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
}

// Cart is a customer's pending selection.
type Cart struct {
	UserID string     `json:"userId" yaml:"userId"`
	Lines  []CartLine `json:"lines" yaml:"lines"`
}

// AnalyticsSummary aggregates the store for the admin dashboard.
type AnalyticsSummary struct {
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
	Products  int             `json:"products"`
	Customers int             `json:"customers"`
}
