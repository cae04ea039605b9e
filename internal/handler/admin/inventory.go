package admin

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// InventoryHandler manages stock records.
type InventoryHandler struct {
	inventory service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

type createInventoryRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type locationRequest struct {
	Location string `json:"location"`
}

// List handles GET /api/admin/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, map[string]any{"inventory": items})
}

// Create handles POST /api/admin/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	item, err := h.inventory.Create(r.Context(), req.ProductID, req.Quantity, req.Location)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Created(w, item)
}

// SetQuantity handles PATCH /api/admin/inventory/{id}/quantity
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	item, err := h.inventory.SetQuantity(r.Context(), r.PathValue("id"), req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, item)
}

// SetLocation handles PATCH /api/admin/inventory/{id}/location
func (h *InventoryHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	item, err := h.inventory.SetLocation(r.Context(), r.PathValue("id"), req.Location)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, item)
}

// Delete handles DELETE /api/admin/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}
