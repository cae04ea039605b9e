package storefront

import (
	"net/http"
	"strings"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	products service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /api/products
//
// Query parameters: category, inStock, featured, limit.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := productFilter(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	products, err := h.products.ListProducts(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, map[string]any{"products": products})
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, product)
}

func productFilter(r *http.Request) (domain.ProductFilter, error) {
	var (
		filter domain.ProductFilter
		err    error
	)
	filter.Category = strings.TrimSpace(r.URL.Query().Get("category"))
	if filter.InStock, err = handler.QueryBool(r, "inStock"); err != nil {
		return filter, err
	}
	if filter.Featured, err = handler.QueryBool(r, "featured"); err != nil {
		return filter, err
	}
	if filter.Limit, err = handler.QueryInt(r, "limit"); err != nil {
		return filter, err
	}
	return filter, nil
}
