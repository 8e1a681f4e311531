package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/johnbenac/graphdown/internal/datasetservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *datasetservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Dataset-level operations.
	r.Get("/dataset/validate", h.Validate)
	r.Get("/dataset/fingerprint", h.Fingerprint)
	r.Post("/dataset/reload", h.Reload)

	// Nodes and adjacency.
	r.Get("/nodes", h.ListNodes)
	r.Get("/nodes/{id}", h.GetNode)
	r.Get("/nodes/{id}/links", h.Links)
	r.Get("/nodes/{id}/backlinks", h.Backlinks)

	// Search.
	r.Get("/search", h.Search)

	// Graph export.
	r.Get("/graph", h.Graph)

	// Blob download.
	r.Get("/blobs/{digest}", h.Blob)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
