package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item.
type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Slug        string          `json:"slug" yaml:"slug"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	CategoryID  string          `json:"categoryId,omitempty" yaml:"categoryId"`
	Stock       int             `json:"stock" yaml:"stock"`
	Active      bool            `json:"active" yaml:"active"`
	UpdatedAt   time.Time       `json:"updatedAt" yaml:"updatedAt"`
}

// Category groups products. ParentID is empty for top-level categories.
type Category struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Slug     string `json:"slug" yaml:"slug"`
	ParentID string `json:"parentId,omitempty" yaml:"parentId"`
}

// Place is a geocoding result.
type Place struct {
	DisplayName string  `json:"displayName"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}
