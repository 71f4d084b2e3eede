// internal/app/features/events/create.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
)

type createResponse struct {
	Message string       `json:"message"`
	Event   models.Event `json:"event"`
}

// HandleCreateNormal handles POST /api/post-events.
func (h *Handler) HandleCreateNormal(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.EventTypeNormal, "Event created successfully")
}

// HandleCreateVoting handles POST /api/post-voting-events.
func (h *Handler) HandleCreateVoting(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.EventTypeVoting, "Voting event created successfully")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, eventType, msg string) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in eventpolicy.EventInput
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "create event", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Svc.Create(ctx, in, eventType, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "create event", err)
		return
	}
	jsonio.Write(w, http.StatusCreated, createResponse{Message: msg, Event: e})
}

// HandleUpload handles POST /api/moderator/upload-event. The event type
// comes from the body and defaults to normal.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	var in eventpolicy.EventInput
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "upload event", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Svc.Upload(ctx, in, u.Email)
	if err != nil {
		apierr.Write(w, h.Log, "upload event", err)
		return
	}
	jsonio.Write(w, http.StatusCreated, createResponse{Message: "Event uploaded successfully", Event: e})
}
