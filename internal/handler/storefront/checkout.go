package storefront

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// CheckoutHandler places orders from the user's cart.
type CheckoutHandler struct {
	orders service.OrderService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(orders service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{orders: orders}
}

// Place handles POST /api/checkout
//
// Body: {"collectionDate":"2026-03-11","collectionTime":"10:00","totalAmount":12.5}
// The total is the one the customer saw and must match the cart.
func (h *CheckoutHandler) Place(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req domain.CheckoutRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), id.UID, req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Created(w, order)
}

// State handles GET /api/checkout/state
func (h *CheckoutHandler) State(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	handler.JSON(w, h.orders.CheckoutStatus(id.UID))
}
