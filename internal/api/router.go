package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(h *Handler, authEnabled bool, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Cached state snapshots and refresh triggers.
	r.Get("/state/{domain}", h.GetState)
	r.Post("/refresh/{domain}", h.Refresh)

	// Settings write with optimistic local overlay.
	r.Put("/settings/{name}", h.UpdateSetting)

	// Post creation and the one-shot handoff of the created record.
	r.Post("/posts", h.CreatePost)
	r.Get("/handoff/latest-post", h.TakeHandoff)

	// Auth-state notifications from the embedding app.
	r.Put("/session", h.PutSession)

	return r
}
