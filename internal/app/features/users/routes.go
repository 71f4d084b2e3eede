// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the directory endpoints on r, all behind a token.
func Routes(r chi.Router, h *Handler, iss *auth.Issuer) {
	r.Group(func(pr chi.Router) {
		pr.Use(iss.RequireSignedIn)

		pr.With(auth.RequireRole(models.RoleModerator, models.RoleAdmin)).Get("/api/users", h.ServeList)
		pr.Put("/api/users/{id}", h.HandleUpdate)
		pr.With(auth.RequireRole(models.RoleAdmin)).Put("/api/users/{id}/role", h.HandleChangeRole)
	})
}
