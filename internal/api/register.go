// Package api declares the storefront and admin endpoints and the tagged references
// each one provides or invalidates.
package api

import (
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.trai.ch/zerr"
)

// Registrar accepts endpoint definitions.
type Registrar interface {
	RegisterQuery(def tagcache.QueryDef) error
	RegisterMutation(def tagcache.MutationDef) error
}

// Queries returns the read endpoints.
func Queries() []tagcache.QueryDef {
	return []tagcache.QueryDef{
		{
			Name:         "products:list",
			ProvidesTags: combine(list[domain.Product](domain.TagProducts, domain.TagProducts), byArg(domain.TagCategories, "categoryId")),
		},
		{Name: "products:get", ProvidesTags: byArg(domain.TagProducts, "id")},
		{Name: "products:search", ProvidesTags: list[domain.Product](domain.TagSearch, domain.TagProducts)},
		{Name: "categories:list", ProvidesTags: list[domain.Category](domain.TagCategories, domain.TagCategories)},
		{Name: "orders:listByUser", ProvidesTags: list[domain.Order](domain.TagOrders, domain.TagOrders)},
		{Name: "orders:get", ProvidesTags: byArg(domain.TagOrders, "id")},
		{Name: "orders:listAll", ProvidesTags: list[domain.Order](domain.TagOrders, domain.TagOrders)},
		{Name: "orderItems:listByOrder", ProvidesTags: byArg(domain.TagOrders, "orderId")},
		{Name: "users:get", ProvidesTags: byArg(domain.TagUser, "id")},
		{Name: "users:list", ProvidesTags: list[domain.User](domain.TagUsers, domain.TagUsers)},
		{Name: "addresses:listByUser", ProvidesTags: byArg(domain.TagUser, "userId")},
		{Name: "coupons:list", ProvidesTags: list[domain.Coupon](domain.TagCoupons, domain.TagCoupons)},
		{Name: "cartRules:list", ProvidesTags: list[domain.CartRule](domain.TagCartRules, domain.TagCartRules)},
		{Name: "cart:get", ProvidesTags: byArg(domain.TagCart, "userId")},
		{Name: "notifications:listByUser", ProvidesTags: byArg(domain.TagNotifications, "userId")},
		{Name: "analytics:summary", ProvidesTags: static(domain.Ref(domain.TagAnalytics))},
	}
}

// Mutations returns the write endpoints.
func Mutations() []tagcache.MutationDef {
	return []tagcache.MutationDef{
		{
			// Adding an item takes stock and reprices the order.
			Name: "orderItems:create",
			InvalidatesTags: combine(
				byArg(domain.TagOrders, "orderId"),
				byArg(domain.TagProducts, "productId"),
				static(domain.Ref(domain.TagAnalytics)),
			),
		},
		{
			Name: "orders:create",
			InvalidatesTags: combine(
				static(domain.ListRef(domain.TagOrders), domain.Ref(domain.TagProducts), domain.Ref(domain.TagAnalytics)),
				byArg(domain.TagCart, "userId"),
				byArg(domain.TagNotifications, "userId"),
			),
		},
		{Name: "orders:touch", InvalidatesTags: byArg(domain.TagOrders, "id")},
		{
			Name: "orders:setStatus",
			InvalidatesTags: combine(
				byArg(domain.TagOrders, "id"),
				// Cancelling restocks the order's products.
				static(domain.ListRef(domain.TagOrders), domain.Ref(domain.TagAnalytics), domain.Ref(domain.TagProducts)),
				byResult(domain.TagNotifications, func(o domain.Order) string { return o.UserID }),
			),
		},
		{
			Name: "products:create",
			InvalidatesTags: static(
				domain.ListRef(domain.TagProducts), domain.ListRef(domain.TagSearch), domain.Ref(domain.TagAnalytics),
			),
		},
		{
			Name: "products:update",
			InvalidatesTags: combine(
				byArg(domain.TagProducts, "id"),
				static(domain.ListRef(domain.TagProducts), domain.ListRef(domain.TagSearch)),
			),
		},
		{
			Name:            "products:remove",
			InvalidatesTags: static(
				domain.Ref(domain.TagProducts), domain.Ref(domain.TagSearch), domain.Ref(domain.TagCart), domain.Ref(domain.TagAnalytics),
			),
		},
		{Name: "categories:create", InvalidatesTags: static(domain.ListRef(domain.TagCategories))},
		{
			Name:            "categories:update",
			InvalidatesTags: combine(byArg(domain.TagCategories, "id"), static(domain.ListRef(domain.TagCategories))),
		},
		{Name: "coupons:create", InvalidatesTags: static(domain.ListRef(domain.TagCoupons))},
		{
			Name:            "coupons:remove",
			InvalidatesTags: combine(byArg(domain.TagCoupons, "id"), static(domain.ListRef(domain.TagCoupons))),
		},
		{Name: "cartRules:create", InvalidatesTags: static(domain.ListRef(domain.TagCartRules))},
		{
			// A rejected add usually means the displayed stock is out of date.
			Name:              "cart:addItem",
			InvalidatesTags:   combine(byArg(domain.TagCart, "userId"), byArg(domain.TagProducts, "productId")),
			InvalidateOnError: true,
		},
		{Name: "cart:removeItem", InvalidatesTags: byArg(domain.TagCart, "userId")},
		{
			Name:            "users:updateProfile",
			InvalidatesTags: combine(byArg(domain.TagUser, "id"), byArg(domain.TagUsers, "id")),
		},
		{Name: "addresses:add", InvalidatesTags: byArg(domain.TagUser, "userId")},
		{Name: "addresses:remove", InvalidatesTags: byArgOrAll(domain.TagUser, "userId")},
		{
			Name:            "notifications:markRead",
			InvalidatesTags: byResult(domain.TagNotifications, func(n domain.Notification) string { return n.UserID }),
		},
	}
}

// Register defines every endpoint on r.
func Register(r Registrar) error {
	for _, def := range Queries() {
		if err := r.RegisterQuery(def); err != nil {
			return zerr.Wrap(err, "register query")
		}
	}
	for _, def := range Mutations() {
		if err := r.RegisterMutation(def); err != nil {
			return zerr.Wrap(err, "register mutation")
		}
	}
	return nil
}
