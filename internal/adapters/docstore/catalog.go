package docstore

import (
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func byName[T any](name func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(name(a), name(b))
	}
}

func productName(p domain.Product) string { return p.Name }

func listProducts(t *tables, args domain.Args) (any, error) {
	categoryID := args.String("categoryId")
	out := lo.Filter(lo.Values(t.products), func(p domain.Product, _ int) bool {
		return categoryID == "" || p.CategoryID == categoryID
	})
	slices.SortFunc(out, byName(productName))
	return out, nil
}

func getProduct(t *tables, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	p, ok := t.products[id]
	if !ok {
		return nil, notFound(tableProducts, id)
	}
	return p, nil
}

func searchProducts(t *tables, args domain.Args) (any, error) {
	q, err := requireString(args, "q")
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(q)
	out := lo.Filter(lo.Values(t.products), func(p domain.Product, _ int) bool {
		return p.Active && (strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q))
	})
	slices.SortFunc(out, byName(productName))
	return out, nil
}

func listCategories(t *tables, _ domain.Args) (any, error) {
	out := lo.Values(t.categories)
	slices.SortFunc(out, byName(func(c domain.Category) string { return c.Name }))
	return out, nil
}

func createProduct(t *tx, args domain.Args) (any, error) {
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	price, ok := args.Decimal("price")
	if !ok || price.IsNegative() {
		return nil, zerr.With(domain.ErrInvalidArgument, "arg", "price")
	}
	stock, _ := args.Int("stock")
	if stock < 0 {
		return nil, zerr.With(domain.ErrInvalidArgument, "arg", "stock")
	}
	categoryID := args.String("categoryId")
	if categoryID != "" {
		if _, ok := t.categories[categoryID]; !ok {
			return nil, notFound(tableCategories, categoryID)
		}
	}

	slug := args.String("slug")
	if slug == "" {
		slug = slugify(name)
	}
	if _, taken := lo.Find(lo.Values(t.products), func(p domain.Product) bool { return p.Slug == slug }); taken {
		return nil, zerr.With(zerr.With(domain.ErrConflict, "table", tableProducts), "slug", slug)
	}

	p := domain.Product{
		ID:          t.newID(),
		Name:        name,
		Slug:        slug,
		Description: args.String("description"),
		Price:       price,
		CategoryID:  categoryID,
		Stock:       stock,
		Active:      true,
		UpdatedAt:   t.now,
	}
	t.products[p.ID] = p
	return p, nil
}

func updateProduct(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	p, ok := t.products[id]
	if !ok {
		return nil, notFound(tableProducts, id)
	}

	if name := args.String("name"); name != "" {
		p.Name = name
	}
	if _, set := args["description"]; set {
		p.Description = args.String("description")
	}
	if _, set := args["price"]; set {
		price, ok := args.Decimal("price")
		if !ok || price.IsNegative() {
			return nil, zerr.With(domain.ErrInvalidArgument, "arg", "price")
		}
		p.Price = price
	}
	if _, set := args["stock"]; set {
		stock, ok := args.Int("stock")
		if !ok || stock < 0 {
			return nil, zerr.With(domain.ErrInvalidArgument, "arg", "stock")
		}
		p.Stock = stock
	}
	if _, set := args["active"]; set {
		p.Active = args.Bool("active")
	}
	if categoryID := args.String("categoryId"); categoryID != "" {
		if _, ok := t.categories[categoryID]; !ok {
			return nil, notFound(tableCategories, categoryID)
		}
		p.CategoryID = categoryID
	}
	p.UpdatedAt = t.now
	t.products[id] = p
	return p, nil
}

func removeProduct(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	if _, ok := t.products[id]; !ok {
		return nil, notFound(tableProducts, id)
	}
	delete(t.products, id)
	for userID, cart := range t.carts {
		cart.Lines = slices.DeleteFunc(cart.Lines, func(l domain.CartLine) bool { return l.ProductID == id })
		t.carts[userID] = cart
	}
	return id, nil
}

func createCategory(t *tx, args domain.Args) (any, error) {
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	parentID := args.String("parentId")
	if parentID != "" {
		if _, ok := t.categories[parentID]; !ok {
			return nil, notFound(tableCategories, parentID)
		}
	}
	slug := slugify(name)
	if _, taken := lo.Find(lo.Values(t.categories), func(c domain.Category) bool { return c.Slug == slug }); taken {
		return nil, zerr.With(zerr.With(domain.ErrConflict, "table", tableCategories), "slug", slug)
	}

	c := domain.Category{ID: t.newID(), Name: name, Slug: slug, ParentID: parentID}
	t.categories[c.ID] = c
	return c, nil
}

func updateCategory(t *tx, args domain.Args) (any, error) {
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	c, ok := t.categories[id]
	if !ok {
		return nil, notFound(tableCategories, id)
	}
	if name := args.String("name"); name != "" {
		c.Name = name
		c.Slug = slugify(name)
	}
	if parentID := args.String("parentId"); parentID != "" {
		if parentID == id {
			return nil, zerr.With(domain.ErrInvalidArgument, "arg", "parentId")
		}
		if _, ok := t.categories[parentID]; !ok {
			return nil, notFound(tableCategories, parentID)
		}
		c.ParentID = parentID
	}
	t.categories[id] = c
	return c, nil
}
