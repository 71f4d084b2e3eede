// internal/app/features/forum/saved.go
package forum

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
)

// HandleSave handles POST /api/save-post.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.bookmark(w, r, "save post", func(ctx context.Context, email, id string) error {
		return h.Svc.Save(ctx, email, id)
	}, "Post saved successfully")
}

// HandleRemoveSaved handles POST /api/remove-saved-post.
func (h *Handler) HandleRemoveSaved(w http.ResponseWriter, r *http.Request) {
	h.bookmark(w, r, "remove saved post", func(ctx context.Context, email, id string) error {
		return h.Svc.RemoveSaved(ctx, email, id)
	}, "Post removed from saved posts")
}

func (h *Handler) bookmark(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string, string) error, msg string) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	var in postIDRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, op, err)
		return
	}
	id := strings.TrimSpace(in.PostID)
	if id == "" {
		apierr.WriteMessage(w, http.StatusBadRequest, "postId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := fn(ctx, email, id); err != nil {
		apierr.Write(w, h.Log, op, err)
		return
	}
	jsonio.Message(w, http.StatusOK, msg)
}

// ServeSaved handles GET /api/saved-posts.
func (h *Handler) ServeSaved(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	posts, err := h.Svc.Saved(ctx, email)
	if err != nil {
		apierr.Write(w, h.Log, "saved posts", err)
		return
	}
	jsonio.Write(w, http.StatusOK, posts)
}
