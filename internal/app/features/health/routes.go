package health

import "github.com/go-chi/chi/v5"

// Routes registers GET /health and HEAD /health on r.
func Routes(r chi.Router, h *Handler) {
	r.Get("/health", h.Serve)
	r.Head("/health", h.Serve)
}
