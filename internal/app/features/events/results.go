// internal/app/features/events/results.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeJoinedUsers handles GET /api/event-joined-users/{eventId}.
func (h *Handler) ServeJoinedUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	people, err := h.Svc.JoinedUsers(ctx, chi.URLParam(r, "eventId"))
	if err != nil {
		apierr.Write(w, h.Log, "event joined users", err)
		return
	}
	jsonio.Write(w, http.StatusOK, people)
}

// ServeVotingResults handles GET /api/voting-results/{eventId}.
func (h *Handler) ServeVotingResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	results, err := h.Svc.VotingResults(ctx, chi.URLParam(r, "eventId"))
	if err != nil {
		apierr.Write(w, h.Log, "voting results", err)
		return
	}
	jsonio.Write(w, http.StatusOK, results)
}

// ServeVotingEvent handles GET /api/voting-event/{eventId}.
func (h *Handler) ServeVotingEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Svc.VotingEvent(ctx, chi.URLParam(r, "eventId"))
	if err != nil {
		apierr.Write(w, h.Log, "voting event", err)
		return
	}
	jsonio.Write(w, http.StatusOK, toView(*e))
}
