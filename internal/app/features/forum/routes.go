// internal/app/features/forum/routes.go
package forum

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the forum endpoints on r. Reading posts is public;
// writing, flagging and bookmarks need a signed-in user.
func Routes(r chi.Router, h *Handler, iss *auth.Issuer) {
	r.Get("/posts", h.ServeList)
	r.Get("/posts/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(iss.RequireSignedIn)

		pr.Post("/posts", h.HandleCreate)
		pr.Post("/posts/{id}/comments", h.HandleComment)
		pr.Get("/api/user-posts", h.ServeUserPosts)
		pr.Put("/api/posts/{id}", h.HandleEdit)
		pr.Delete("/api/posts/{id}", h.HandleDelete)
		pr.Delete("/api/delete-post/{postId}", h.HandleDelete)
		pr.Post("/api/flag-post", h.HandleFlag)

		pr.Post("/api/save-post", h.HandleSave)
		pr.Get("/api/saved-posts", h.ServeSaved)
		pr.Post("/api/remove-saved-post", h.HandleRemoveSaved)

		pr.Group(func(mr chi.Router) {
			mr.Use(auth.RequireRole(models.RoleModerator, models.RoleAdmin))
			mr.Get("/api/flagged-posts", h.ServeFlagged)
			mr.Delete("/api/flagged-posts/{postId}", h.HandleDeleteFlagged)
		})
	})
}
