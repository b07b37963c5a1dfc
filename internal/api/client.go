package api

import (
	"context"
	"fmt"
	"maps"

	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

// Layer is the part of the data layer the client calls.
type Layer interface {
	Invoke(ctx context.Context, name string, args domain.Args) (domain.CacheEntry, error)
	InvokeMutation(ctx context.Context, name string, args domain.Args) (any, error)
}

// Client decodes endpoint results into domain types.
type Client struct {
	layer Layer
}

// NewClient creates a Client over layer.
func NewClient(layer Layer) *Client {
	return &Client{layer: layer}
}

func query[T any](ctx context.Context, l Layer, name string, args domain.Args) (T, error) {
	var zero T
	entry, err := l.Invoke(ctx, name, args)
	if err != nil {
		return zero, err
	}
	if entry.IsError() {
		return zero, entry.Err
	}
	return decode[T](name, entry.Data)
}

func mutate[T any](ctx context.Context, l Layer, name string, args domain.Args) (T, error) {
	var zero T
	res, err := l.InvokeMutation(ctx, name, args)
	if err != nil {
		return zero, err
	}
	return decode[T](name, res)
}

func decode[T any](name string, data any) (T, error) {
	v, ok := data.(T)
	if !ok {
		var zero T
		return zero, zerr.With(zerr.With(domain.ErrUnexpectedResult, "endpoint", name), "type", fmt.Sprintf("%T", data))
	}
	return v, nil
}

// Products lists products, optionally restricted to a category.
func (c *Client) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	args := domain.Args{}
	if categoryID != "" {
		args["categoryId"] = categoryID
	}
	return query[[]domain.Product](ctx, c.layer, "products:list", args)
}

// Product returns one product.
func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	return query[domain.Product](ctx, c.layer, "products:get", domain.Args{"id": id})
}

// Search returns active products matching q.
func (c *Client) Search(ctx context.Context, q string) ([]domain.Product, error) {
	return query[[]domain.Product](ctx, c.layer, "products:search", domain.Args{"q": q})
}

// Categories lists categories.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	return query[[]domain.Category](ctx, c.layer, "categories:list", domain.Args{})
}

// Order returns an order with its items.
func (c *Client) Order(ctx context.Context, id string) (domain.OrderDetail, error) {
	return query[domain.OrderDetail](ctx, c.layer, "orders:get", domain.Args{"id": id})
}

// Orders lists a customer's orders.
func (c *Client) Orders(ctx context.Context, userID string) ([]domain.Order, error) {
	return query[[]domain.Order](ctx, c.layer, "orders:listByUser", domain.Args{"userId": userID})
}

// Cart returns a customer's cart.
func (c *Client) Cart(ctx context.Context, userID string) (domain.Cart, error) {
	return query[domain.Cart](ctx, c.layer, "cart:get", domain.Args{"userId": userID})
}

// Summary returns the dashboard aggregates.
func (c *Client) Summary(ctx context.Context) (domain.AnalyticsSummary, error) {
	return query[domain.AnalyticsSummary](ctx, c.layer, "analytics:summary", domain.Args{})
}

// AddOrderItem appends a line to a pending order.
func (c *Client) AddOrderItem(ctx context.Context, orderID, productID string, quantity int) (domain.OrderItem, error) {
	return mutate[domain.OrderItem](ctx, c.layer, "orderItems:create", domain.Args{
		"orderId":   orderID,
		"productId": productID,
		"quantity":  quantity,
	})
}

// AddToCart adds quantity units of a product to a customer's cart.
func (c *Client) AddToCart(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	return mutate[domain.Cart](ctx, c.layer, "cart:addItem", domain.Args{
		"userId":    userID,
		"productId": productID,
		"quantity":  quantity,
	})
}

// Checkout turns a customer's cart into an order.
func (c *Client) Checkout(ctx context.Context, userID, addressID, couponCode string) (domain.Order, error) {
	args := domain.Args{"userId": userID}
	if addressID != "" {
		args["addressId"] = addressID
	}
	if couponCode != "" {
		args["couponCode"] = couponCode
	}
	return mutate[domain.Order](ctx, c.layer, "orders:create", args)
}

// SetOrderStatus moves an order to status.
func (c *Client) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	return mutate[domain.Order](ctx, c.layer, "orders:setStatus", domain.Args{"id": id, "status": string(status)})
}

// UpdateProduct applies patch to a product.
func (c *Client) UpdateProduct(ctx context.Context, id string, patch domain.Args) (domain.Product, error) {
	args := domain.Args{}
	maps.Copy(args, patch)
	args["id"] = id
	return mutate[domain.Product](ctx, c.layer, "products:update", args)
}
