// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes registers the event endpoints on r. Only the event listings are
// public; participant and voter views sit behind iss.RequireSignedIn.
func Routes(r chi.Router, h *Handler, iss *auth.Issuer) {
	r.Get("/api/events", h.ServeList)
	r.Get("/api/allevents", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(iss.RequireSignedIn)

		pr.Get("/api/event-joined-users/{eventId}", h.ServeJoinedUsers)
		pr.Get("/api/voting-results/{eventId}", h.ServeVotingResults)
		pr.Get("/api/voting-event/{eventId}", h.ServeVotingEvent)

		pr.Post("/api/join-event", h.HandleJoin)
		pr.Get("/api/join-event/{eventId}", h.HandleJoinByPath)
		pr.Post("/api/vote-event", h.HandleVote)
		pr.Post("/api/voting-event/{eventId}/vote", h.HandleVoteByPath)

		pr.Post("/api/events", h.ServeScoped)
		pr.Get("/api/users/events", h.ServeParticipation)
		pr.Get("/api/user/joined-events", h.ServeJoinedEvents)
		pr.Get("/api/user-created-events", h.ServeCreatedEvents)
		pr.Get("/api/users/joined-events-count", h.ServeJoinedCount)

		// Delete re-reads the caller's role from the store.
		pr.Delete("/api/events/{id}", h.HandleDelete)
		pr.Post("/api/moderator/upload-event", h.HandleUpload)

		pr.Group(func(mr chi.Router) {
			mr.Use(auth.RequireRole(models.RoleModerator, models.RoleAdmin))
			mr.Post("/api/post-events", h.HandleCreateNormal)
			mr.Post("/api/post-voting-events", h.HandleCreateVoting)
			mr.Put("/api/update-event/{eventId}", h.HandleUpdate)
		})
	})
}
