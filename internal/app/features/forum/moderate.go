// internal/app/features/forum/moderate.go
package forum

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/policy/postpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

type flagResponse struct {
	Message   string `json:"message"`
	FlagCount int    `json:"flagCount"`
}

// HandleFlag handles POST /api/flag-post.
func (h *Handler) HandleFlag(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	var in postIDRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "flag post", err)
		return
	}
	if strings.TrimSpace(in.PostID) == "" {
		apierr.WriteMessage(w, http.StatusBadRequest, "postId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Svc.Flag(ctx, in.PostID, email)
	if err != nil {
		apierr.Write(w, h.Log, "flag post", err)
		return
	}
	jsonio.Write(w, http.StatusOK, flagResponse{Message: "Post flagged successfully", FlagCount: p.FlagCount})
}

// ServeFlagged handles GET /api/flagged-posts.
func (h *Handler) ServeFlagged(w http.ResponseWriter, r *http.Request) {
	if !postpolicy.CanReviewFlags(r) {
		apierr.WriteMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	posts, err := h.Svc.Posts.ListFlagged(ctx)
	if err != nil {
		apierr.Write(w, h.Log, "flagged posts", err)
		return
	}
	jsonio.Write(w, http.StatusOK, posts)
}

// HandleDelete handles DELETE /api/posts/{id} and
// DELETE /api/delete-post/{postId}: the author or a moderator may delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		id = chi.URLParam(r, "postId")
	}
	h.delete(w, r, id, false)
}

// HandleDeleteFlagged handles DELETE /api/flagged-posts/{postId}.
func (h *Handler) HandleDeleteFlagged(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, chi.URLParam(r, "postId"), true)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id string, flagged bool) {
	actor, ok := callerEmail(w, r)
	if !ok {
		return
	}
	if flagged && !postpolicy.CanReviewFlags(r) {
		apierr.WriteMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Svc.Active(ctx, id)
	if err != nil {
		apierr.Write(w, h.Log, "delete post", err)
		return
	}
	if !postpolicy.CanModify(r, p) {
		apierr.WriteMessage(w, http.StatusForbidden, "You can only delete your own posts")
		return
	}
	n, err := h.Svc.Delete(ctx, p)
	if err != nil {
		apierr.Write(w, h.Log, "delete post", err)
		return
	}
	h.AuditLog.PostDeleted(ctx, r, actor, p.ID, flagged, n)
	jsonio.Message(w, http.StatusOK, "Post deleted successfully")
}
