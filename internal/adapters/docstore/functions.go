package docstore

import (
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func (s *Store) readFunctions() map[string]readFunc {
	return map[string]readFunc{
		"products:list":            listProducts,
		"products:get":             getProduct,
		"products:search":          searchProducts,
		"categories:list":          listCategories,
		"orders:listByUser":        listOrdersByUser,
		"orders:get":               getOrder,
		"orders:listAll":           listAllOrders,
		"orderItems:listByOrder":   listOrderItems,
		"users:get":                getUser,
		"users:list":               listUsers,
		"addresses:listByUser":     listAddresses,
		"coupons:list":             listCoupons,
		"cartRules:list":           listCartRules,
		"cart:get":                 getCart,
		"notifications:listByUser": listNotifications,
		"analytics:summary":        summarize,
	}
}

func (s *Store) writeFunctions() map[string]writeFunc {
	return map[string]writeFunc{
		"orderItems:create":      createOrderItem,
		"orders:create":          checkout,
		"orders:touch":           touchOrder,
		"orders:setStatus":       setOrderStatus,
		"products:create":        createProduct,
		"products:update":        updateProduct,
		"products:remove":        removeProduct,
		"categories:create":      createCategory,
		"categories:update":      updateCategory,
		"coupons:create":         createCoupon,
		"coupons:remove":         removeCoupon,
		"cartRules:create":       createCartRule,
		"cart:addItem":           addCartItem,
		"cart:removeItem":        removeCartItem,
		"users:updateProfile":    updateProfile,
		"addresses:add":          addAddress,
		"addresses:remove":       removeAddress,
		"notifications:markRead": markNotificationRead,
	}
}

func requireString(args domain.Args, key string) (string, error) {
	v := args.String(key)
	if v == "" {
		return "", zerr.With(zerr.With(domain.ErrInvalidArgument, "arg", key), "reason", "required")
	}
	return v, nil
}

func requirePositive(args domain.Args, key string) (int, error) {
	n, ok := args.Int(key)
	if !ok || n <= 0 {
		return 0, zerr.With(zerr.With(domain.ErrInvalidArgument, "arg", key), "reason", "must be a positive integer")
	}
	return n, nil
}

func notFound(table, id string) error {
	return zerr.With(zerr.With(domain.ErrNotFound, "table", table), "id", id)
}
