package routes

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/handler/admin"
	"github.com/dukerupert/pantry/internal/handler/storefront"
	"github.com/dukerupert/pantry/internal/router"
)

// StorefrontDeps contains dependencies for customer routes
type StorefrontDeps struct {
	ProductHandler  *storefront.ProductHandler
	CartHandler     *storefront.CartHandler
	CheckoutHandler *storefront.CheckoutHandler
	OrderHandler    *storefront.OrderHandler
	ProfileHandler  *storefront.ProfileHandler

	// CheckoutLimit throttles order placement per user.
	CheckoutLimit router.Middleware
}

// AdminDeps contains dependencies for admin routes
type AdminDeps struct {
	ProductHandler   *admin.ProductHandler
	OrderHandler     *admin.OrderHandler
	InventoryHandler *admin.InventoryHandler
}

// OpsDeps contains dependencies for health and metrics routes
type OpsDeps struct {
	HealthHandler  http.HandlerFunc
	MetricsHandler http.Handler

	// UploadsDir, when set, serves locally stored images under UploadsURL.
	UploadsDir string
	UploadsURL string
}
