// Package storefront holds the customer-facing JSON handlers.
package storefront

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/handler"
)

// identity returns the authenticated caller, writing a 401 when there is none.
func identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id := domain.IdentityFromContext(r.Context())
	if id == nil || id.UID == "" {
		handler.ErrorResponse(w, r, domain.Unauthorized("", "Sign in to continue"))
		return domain.Identity{}, false
	}
	return *id, true
}
