package docstore

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func listCoupons(t *tables, _ domain.Args) (any, error) {
	out := lo.Values(t.coupons)
	slices.SortFunc(out, byName(func(c domain.Coupon) string { return c.Code }))
	return out, nil
}

func listCartRules(t *tables, _ domain.Args) (any, error) {
	out := lo.Values(t.cartRules)
	slices.SortFunc(out, func(a, b domain.CartRule) int {
		return a.MinSubtotal.Cmp(b.MinSubtotal)
	})
	return out, nil
}

func percentArg(args domain.Args) (decimal.Decimal, error) {
	percent, ok := args.Decimal("percentOff")
	if !ok || !percent.IsPositive() || percent.GreaterThan(hundred) {
		return decimal.Decimal{}, zerr.With(zerr.With(domain.ErrInvalidArgument, "arg", "percentOff"), "reason", "must be in (0, 100]")
	}
	return percent, nil
}

func createCoupon(t *tx, args domain.Args) (any, error) {
	code, err := requireString(args, "code")
	if err != nil {
		return nil, err
	}
	code = strings.ToUpper(code)
	percent, err := percentArg(args)
	if err != nil {
		return nil, err
	}
	if _, taken := t.couponByCode(code); taken {
		return nil, zerr.With(zerr.With(domain.ErrConflict, "table", tableCoupons), "code", code)
	}

	c := domain.Coupon{ID: t.newID(), Code: code, PercentOff: percent, Active: true}
	if raw := args.String("expiresAt"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidArgument.Error()), "arg", "expiresAt")
		}
		c.ExpiresAt = &at
	}
	t.coupons[c.ID] = c
	return c, nil
}

func removeCoupon(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	if _, ok := t.coupons[id]; !ok {
		return nil, notFound(tableCoupons, id)
	}
	delete(t.coupons, id)
	return id, nil
}

func createCartRule(t *tx, args domain.Args) (any, error) {
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	percent, err := percentArg(args)
	if err != nil {
		return nil, err
	}
	minSubtotal, ok := args.Decimal("minSubtotal")
	if !ok || minSubtotal.IsNegative() {
		return nil, zerr.With(domain.ErrInvalidArgument, "arg", "minSubtotal")
	}

	r := domain.CartRule{ID: t.newID(), Name: name, MinSubtotal: minSubtotal, PercentOff: percent}
	t.cartRules[r.ID] = r
	return r, nil
}
