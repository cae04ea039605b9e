// Package admin holds the JSON handlers behind the admin role.
package admin

import (
	"errors"
	"net/http"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/service"
)

// ProductHandler manages the catalog.
type ProductHandler struct {
	products service.ProductService
}

// NewProductHandler creates a new admin product handler
func NewProductHandler(products service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// productRequest holds the fields an admin may set. Stock is managed
// through inventory, not here.
type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Featured    bool    `json:"featured"`
}

func (p productRequest) product(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Featured:    p.Featured,
	}
}

// Create handles POST /api/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.CreateProduct(r.Context(), req.product(""))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.Created(w, product)
}

// Update handles PUT /api/admin/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := handler.DecodeJSON(r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), req.product(r.PathValue("id")))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, product)
}

// Delete handles DELETE /api/admin/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.NoContent(w)
}

// UploadImage handles POST /api/admin/products/{id}/image
//
// Expects a multipart form with the file in the "image" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	const op = "ProductHandler.UploadImage"

	if err := r.ParseMultipartForm(service.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handler.ErrorResponse(w, r, domain.WithOp(service.ErrImageTooLarge, op))
			return
		}
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, op, "Request must be a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		handler.ErrorResponse(w, r, domain.WithOp(service.ErrImageRequired, op))
		return
	}
	defer file.Close()

	product, err := h.products.UploadImage(r.Context(), service.ImageUpload{
		ProductID:   r.PathValue("id"),
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, product)
}
