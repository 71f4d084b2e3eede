// internal/app/features/events/participate.go
package events

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type joinRequest struct {
	EventID string `json:"eventId"`
}

type joinResponse struct {
	Message     string               `json:"message"`
	JoinedUsers []models.Participant `json:"joinedUsers"`
	TotalJoined int                  `json:"totalJoined"`
}

// HandleJoin handles POST /api/join-event.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var in joinRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "join event", err)
		return
	}
	h.join(w, r, in.EventID)
}

// HandleJoinByPath handles GET /api/join-event/{eventId}.
func (h *Handler) HandleJoinByPath(w http.ResponseWriter, r *http.Request) {
	h.join(w, r, chi.URLParam(r, "eventId"))
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request, eventID string) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		apierr.WriteMessage(w, http.StatusBadRequest, "eventId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Svc.Join(ctx, u.Email, eventID)
	if err != nil {
		apierr.Write(w, h.Log, "join event", err)
		return
	}
	jsonio.Write(w, http.StatusOK, joinResponse{
		Message:     "Event joined successfully!",
		JoinedUsers: e.JoinedUsers,
		TotalJoined: e.TotalJoined,
	})
}

type voteRequest struct {
	EventID        string `json:"eventId"`
	SelectedOption string `json:"selectedOption"`
}

type voteResponse struct {
	Message string       `json:"message"`
	Options []optionView `json:"voteOptions"`
}

// HandleVote handles POST /api/vote-event.
func (h *Handler) HandleVote(w http.ResponseWriter, r *http.Request) {
	var in voteRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "vote", err)
		return
	}
	h.vote(w, r, in.EventID, in.SelectedOption)
}

// HandleVoteByPath handles POST /api/voting-event/{eventId}/vote.
func (h *Handler) HandleVoteByPath(w http.ResponseWriter, r *http.Request) {
	var in voteRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "vote", err)
		return
	}
	h.vote(w, r, chi.URLParam(r, "eventId"), in.SelectedOption)
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, eventID, option string) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		apierr.WriteMessage(w, http.StatusBadRequest, "eventId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Svc.Vote(ctx, u.Email, eventID, option)
	if err != nil {
		apierr.Write(w, h.Log, "vote", err)
		return
	}
	jsonio.Write(w, http.StatusOK, voteResponse{
		Message: "Vote submitted successfully",
		Options: optionViews(e.VoteOptions),
	})
}
