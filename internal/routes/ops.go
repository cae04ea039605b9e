package routes

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/handler"
	"github.com/dukerupert/pantry/internal/router"
)

// RegisterOpsRoutes registers health, metrics, uploaded files and the JSON
// 404 for unknown API paths.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.HealthHandler)
	if deps.MetricsHandler != nil {
		r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler)
	}
	if deps.UploadsDir != "" {
		r.Static(deps.UploadsURL, deps.UploadsDir)
	}

	r.Any("/api/", http.HandlerFunc(handler.NotFoundResponse))
}
