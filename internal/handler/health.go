package handler

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/connectivity"
)

// StatusSource reports the current connectivity reading.
type StatusSource interface {
	Status() connectivity.Status
}

type healthResponse struct {
	Status       string              `json:"status"`
	Backend      string              `json:"backend"`
	Connectivity connectivity.Status `json:"connectivity"`
}

// Health handles GET /health. It answers 200 while offline as well: the
// process is serving, and reads fall back to cached data.
func Health(backend string, source StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := source.Status()
		resp := healthResponse{
			Status:       "ok",
			Backend:      backend,
			Connectivity: status,
		}
		if !status.Online() {
			resp.Status = "degraded"
		}
		JSON(w, resp)
	}
}
