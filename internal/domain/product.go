package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// PRODUCT DOMAIN ERRORS
// =============================================================================

var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrOutOfStock      = &Error{Code: ECONFLICT, Message: "Product is out of stock"}
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// Product is a catalog entry. InStock mirrors the product's inventory record
// and is only written by the inventory service.
type Product struct {
	ID          string    `firestore:"-" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Description string    `firestore:"description" json:"description"`
	Category    string    `firestore:"category" json:"category"`
	Price       float64   `firestore:"price" json:"price"`
	ImageURL    string    `firestore:"imageUrl" json:"imageUrl"`
	ImageKey    string    `firestore:"imageKey,omitempty" json:"-"`
	InStock     bool      `firestore:"inStock" json:"inStock"`
	Featured    bool      `firestore:"featured" json:"featured"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Validate checks the fields an admin can edit.
func (p *Product) Validate(op string) error {
	var err error
	if strings.TrimSpace(p.Name) == "" {
		err = AddFieldError(err, "name", "Name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		err = AddFieldError(err, "category", "Category is required")
	}
	if p.Price < 0 {
		err = AddFieldError(err, "price", "Price must not be negative")
	}
	if ve, ok := err.(*ValidationError); ok {
		ve.Op = op
	}
	return err
}

// ProductFilter narrows a product listing. Nil pointers mean "any".
// Results are ordered newest first.
type ProductFilter struct {
	Category string
	InStock  *bool
	Featured *bool
	Limit    int
}

// Key returns a stable cache key for the filter.
func (f ProductFilter) Key() string {
	return fmt.Sprintf("category=%s|inStock=%s|featured=%s|limit=%d",
		f.Category, boolPtrString(f.InStock), boolPtrString(f.Featured), f.Limit)
}

// Matches reports whether p passes the filter, ignoring Limit.
func (f ProductFilter) Matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.InStock != nil && p.InStock != *f.InStock {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}

func boolPtrString(b *bool) string {
	if b == nil {
		return "any"
	}
	if *b {
		return "true"
	}
	return "false"
}

// ProductRepository is the persistence contract for products.
type ProductRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)

	// CreateProduct assigns p.ID.
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	// DeleteProduct removes the product and its inventory record together.
	DeleteProduct(ctx context.Context, id string) error
}
