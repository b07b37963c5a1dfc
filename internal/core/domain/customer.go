package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role distinguishes customers from back-office staff.
type Role string

const (
	// RoleCustomer is a storefront shopper.
	RoleCustomer Role = "customer"
	// RoleAdmin is a dashboard operator.
	RoleAdmin Role = "admin"
)

// User is a storefront or dashboard account.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone,omitempty" yaml:"phone"`
	Role  Role   `json:"role" yaml:"role"`
}

// Address is a shipping address. Coordinates are filled from the geocoder when known.
type Address struct {
	ID         string   `json:"id" yaml:"id"`
	UserID     string   `json:"userId" yaml:"userId"`
	Line1      string   `json:"line1" yaml:"line1"`
	City       string   `json:"city" yaml:"city"`
	PostalCode string   `json:"postalCode" yaml:"postalCode"`
	Country    string   `json:"country" yaml:"country"`
	Lat        *float64 `json:"lat,omitempty" yaml:"lat"`
	Lng        *float64 `json:"lng,omitempty" yaml:"lng"`
}

// Coupon is a redeemable discount code.
type Coupon struct {
	ID         string          `json:"id" yaml:"id"`
	Code       string          `json:"code" yaml:"code"`
	PercentOff decimal.Decimal `json:"percentOff" yaml:"percentOff"`
	Active     bool            `json:"active" yaml:"active"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty" yaml:"expiresAt"`
}

// Usable reports whether the coupon can be redeemed at now.
func (c Coupon) Usable(now time.Time) bool {
	return c.Active && (c.ExpiresAt == nil || now.Before(*c.ExpiresAt))
}

// CartRule is an automatic discount applied when the subtotal reaches MinSubtotal.
type CartRule struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	MinSubtotal decimal.Decimal `json:"minSubtotal" yaml:"minSubtotal"`
	PercentOff  decimal.Decimal `json:"percentOff" yaml:"percentOff"`
}

// Notification is a message shown in the customer dashboard.
type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"userId" yaml:"userId"`
	Message   string    `json:"message" yaml:"message"`
	Read      bool      `json:"read" yaml:"read"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}
