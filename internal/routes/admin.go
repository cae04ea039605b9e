package routes

import (
	"github.com/dukerupert/pantry/internal/middleware"
	"github.com/dukerupert/pantry/internal/router"
)

// RegisterAdminRoutes registers catalog, order and inventory management.
// Every route requires the admin role.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.RequireAdmin)

	// Image uploads carry their own body limit
	admin.Post("/api/admin/products/{id}/image", deps.ProductHandler.UploadImage,
		middleware.MaxBodySize(middleware.UploadMaxBodySize))

	a := admin.Group(middleware.MaxBodySize())

	// Products
	a.Post("/api/admin/products", deps.ProductHandler.Create)
	a.Put("/api/admin/products/{id}", deps.ProductHandler.Update)
	a.Delete("/api/admin/products/{id}", deps.ProductHandler.Delete)

	// Orders
	a.Get("/api/admin/orders", deps.OrderHandler.List)
	a.Patch("/api/admin/orders/{id}/status", deps.OrderHandler.UpdateStatus)
	a.Patch("/api/admin/orders/{id}/collection", deps.OrderHandler.UpdateCollection)

	// Inventory
	a.Get("/api/admin/inventory", deps.InventoryHandler.List)
	a.Post("/api/admin/inventory", deps.InventoryHandler.Create)
	a.Patch("/api/admin/inventory/{id}/quantity", deps.InventoryHandler.SetQuantity)
	a.Patch("/api/admin/inventory/{id}/location", deps.InventoryHandler.SetLocation)
	a.Delete("/api/admin/inventory/{id}", deps.InventoryHandler.Delete)
}
