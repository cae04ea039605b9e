package storefront

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// OrderHandler lists the signed-in user's orders.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List handles GET /api/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	limit, err := handler.QueryInt(r, "limit")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	orders, err := h.orders.ListUserOrders(r.Context(), id.UID, limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, map[string]any{"orders": orders})
}

// Get handles GET /api/orders/{id}
//
// Orders belonging to someone else are reported as not found.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if order.UserID != id.UID && id.Role != domain.RoleAdmin {
		handler.ErrorResponse(w, r, domain.WithOp(domain.ErrOrderNotFound, "OrderHandler.Get"))
		return
	}
	handler.JSON(w, order)
}
