package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/adrservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *adrservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Analysis outputs.
	r.Get("/report", h.Report)
	r.Get("/graph", h.Graph)
	r.Get("/cycles", h.Cycles)
	r.Get("/issues", h.Issues)

	// Records.
	r.Get("/adrs", h.ListADRs)
	r.Get("/adrs/{id}", h.GetADR)
	r.Get("/adrs/{id}/impact", h.Impact)

	// Search.
	r.Get("/search", h.Search)

	// Auto-fix (dry-run by default).
	r.Post("/fixes", h.Fixes)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
