package storefront

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
	"github.com/dukerupert/pantry/internal/telemetry"
)

// CartHandler handles the signed-in user's cart. Every response carries the
// cart summary after the change.
type CartHandler struct {
	carts    *service.CartRegistry
	products service.ProductService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartRegistry, products service.ProductService) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	handler.JSON(w, h.carts.Cart(id.UID).Summary())
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("CartHandler.AddItem", "productId", "Product is required"))
		return
	}
	if err := checkQuantity("CartHandler.AddItem", req.Quantity); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart := h.carts.Cart(id.UID)
	cart.AddToCart(*product, req.Quantity)
	telemetry.Business.CartItemAdded(product.ID, max(req.Quantity, 1))

	handler.JSON(w, cart.Summary())
}

// UpdateItem handles PATCH /api/cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if err := checkQuantity("CartHandler.UpdateItem", req.Quantity); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart := h.carts.Cart(id.UID)
	cart.UpdateQuantity(r.PathValue("productID"), req.Quantity)
	handler.JSON(w, cart.Summary())
}

// RemoveItem handles DELETE /api/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	cart := h.carts.Cart(id.UID)
	cart.RemoveFromCart(r.PathValue("productID"))
	handler.JSON(w, cart.Summary())
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	cart := h.carts.Cart(id.UID)
	cart.ClearCart()
	telemetry.Business.CartEmptied()
	handler.JSON(w, cart.Summary())
}

// Quantities below 1 are clamped by the cart; only oversized ones are refused.
func checkQuantity(op string, quantity int) error {
	if quantity > service.MaxLineQuantity {
		return domain.NewValidationError(op, "quantity", fmt.Sprintf("Quantity must be at most %d", service.MaxLineQuantity))
	}
	return nil
}
