// internal/app/features/events/manage.go
package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type updateResponse struct {
	Message string    `json:"message"`
	Event   eventView `json:"event"`
}

// HandleUpdate handles PUT /api/update-event/{eventId}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch eventpolicy.EventPatch
	if err := jsonio.Decode(r, &patch); err != nil {
		apierr.Write(w, h.Log, "update event", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Svc.Update(ctx, chi.URLParam(r, "eventId"), patch)
	if err != nil {
		apierr.Write(w, h.Log, "update event", err)
		return
	}
	jsonio.Write(w, http.StatusOK, updateResponse{Message: "Event updated successfully", Event: toView(e)})
}

// HandleDelete handles DELETE /api/events/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.Delete(ctx, u.Email, id); err != nil {
		apierr.Write(w, h.Log, "delete event", err)
		return
	}
	h.AuditLog.EventDeleted(ctx, r, u.Email, id)
	jsonio.Message(w, http.StatusOK, "Event deleted successfully.")
}
