// internal/app/features/events/list.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// ServeList handles GET /api/events and GET /api/allevents.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	all, err := h.Svc.ListAll(ctx)
	if err != nil {
		apierr.Write(w, h.Log, "list events", err)
		return
	}
	jsonio.Write(w, http.StatusOK, toViews(all))
}

// ServeScoped handles POST /api/events. Admins see every active event,
// moderators see the ones they created.
func (h *Handler) ServeScoped(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	list, err := h.Svc.ListScoped(ctx, u.Role, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "list managed events", err)
		return
	}
	jsonio.Write(w, http.StatusOK, toViews(list))
}

type participationResponse struct {
	JoinedEvents []models.JoinedEventRef `json:"joinedEvents"`
	VotedEvents  []models.VoteRecord     `json:"votedEvents"`
}

// ServeParticipation handles GET /api/users/events.
func (h *Handler) ServeParticipation(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Svc.Participation(ctx, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "user events", err)
		return
	}
	resp := participationResponse{JoinedEvents: acct.JoinedEvents, VotedEvents: acct.VotedEvents}
	if resp.JoinedEvents == nil {
		resp.JoinedEvents = []models.JoinedEventRef{}
	}
	if resp.VotedEvents == nil {
		resp.VotedEvents = []models.VoteRecord{}
	}
	jsonio.Write(w, http.StatusOK, resp)
}

// ServeJoinedEvents handles GET /api/user/joined-events.
func (h *Handler) ServeJoinedEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.JoinedDetails(ctx, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "joined events", err)
		return
	}
	out := make([]joinedDetail, 0, len(list))
	for _, e := range list {
		out = append(out, joinedDetail{
			EventID:     e.ID,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Time:        e.Time,
			Location:    e.Location,
			Status:      e.Status,
		})
	}
	jsonio.Write(w, http.StatusOK, out)
}

type createdResponse struct {
	NormalEvents []eventView `json:"normalEvents"`
	VotingEvents []eventView `json:"votingEvents"`
}

// ServeCreatedEvents handles GET /api/user-created-events.
func (h *Handler) ServeCreatedEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Svc.ListCreatedBy(ctx, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "created events", err)
		return
	}
	resp := createdResponse{NormalEvents: []eventView{}, VotingEvents: []eventView{}}
	for _, e := range list {
		if e.IsVoting() {
			resp.VotingEvents = append(resp.VotingEvents, toView(e))
		} else {
			resp.NormalEvents = append(resp.NormalEvents, toView(e))
		}
	}
	jsonio.Write(w, http.StatusOK, resp)
}

// ServeJoinedCount handles GET /api/users/joined-events-count.
func (h *Handler) ServeJoinedCount(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Svc.Participation(ctx, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "joined events count", err)
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]int{"joinedEventsCount": len(acct.JoinedEvents)})
}
