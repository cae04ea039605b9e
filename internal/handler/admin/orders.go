package admin

import (
	"net/http"
	"strings"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// OrderHandler handles order fulfilment.
type OrderHandler struct {
	orders service.OrderService
}

// NewOrderHandler creates a new admin order handler
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

type collectionRequest struct {
	CollectionDate string `json:"collectionDate"`
	CollectionTime string `json:"collectionTime"`
}

// List handles GET /api/admin/orders?status=pending&limit=50
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := handler.QueryInt(r, "limit")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	status := domain.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		handler.ErrorResponse(w, r, domain.NewValidationError("OrderHandler.List", "status", "Unknown order status"))
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), status, limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, map[string]any{"orders": orders})
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, order)
}

// UpdateCollection handles PATCH /api/admin/orders/{id}/collection
func (h *OrderHandler) UpdateCollection(w http.ResponseWriter, r *http.Request) {
	var req collectionRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.UpdateCollection(r.Context(), r.PathValue("id"), req.CollectionDate, req.CollectionTime)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, order)
}
