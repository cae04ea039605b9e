package routes

import (
	"github.com/dukerupert/pantry/internal/middleware"
	"github.com/dukerupert/pantry/internal/router"
)

// RegisterStorefrontRoutes registers the customer-facing API. The catalog is
// public; everything else needs a signed-in user.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Catalog
	r.Get("/api/products", deps.ProductHandler.List)
	r.Get("/api/products/{id}", deps.ProductHandler.Get)

	account := r.Group(middleware.RequireAuth, middleware.MaxBodySize())

	// Cart
	account.Get("/api/cart", deps.CartHandler.View)
	account.Post("/api/cart/items", deps.CartHandler.AddItem)
	account.Patch("/api/cart/items/{productID}", deps.CartHandler.UpdateItem)
	account.Delete("/api/cart/items/{productID}", deps.CartHandler.RemoveItem)
	account.Delete("/api/cart", deps.CartHandler.Clear)

	// Checkout
	if deps.CheckoutLimit != nil {
		account.Post("/api/checkout", deps.CheckoutHandler.Place, deps.CheckoutLimit)
	} else {
		account.Post("/api/checkout", deps.CheckoutHandler.Place)
	}
	account.Get("/api/checkout/state", deps.CheckoutHandler.State)

	// Orders
	account.Get("/api/orders", deps.OrderHandler.List)
	account.Get("/api/orders/{id}", deps.OrderHandler.Get)

	// Profile
	account.Get("/api/profile", deps.ProfileHandler.Get)
	account.Put("/api/profile", deps.ProfileHandler.Update)
}
