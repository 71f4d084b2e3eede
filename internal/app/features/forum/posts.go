// internal/app/features/forum/posts.go
package forum

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/policy/postpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

type postResponse struct {
	Message string      `json:"message"`
	Post    models.Post `json:"post"`
}

// HandleCreate handles POST /posts. The author email comes from the token.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}
	var in postpolicy.PostInput
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "create post", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Svc.Create(ctx, in, email)
	if err != nil {
		apierr.Write(w, h.Log, "create post", err)
		return
	}
	jsonio.Write(w, http.StatusCreated, postResponse{Message: "Post created successfully", Post: p})
}

// ServeList handles GET /posts. An optional author query narrows the list
// to one author's posts.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	author := normalize.Email(query.Get(r, "author"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	posts, err := h.Svc.List(ctx, author)
	if err != nil {
		apierr.Write(w, h.Log, "list posts", err)
		return
	}
	jsonio.Write(w, http.StatusOK, posts)
}

// ServeGet handles GET /posts/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Svc.Active(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, h.Log, "get post", err)
		return
	}
	jsonio.Write(w, http.StatusOK, p)
}

// ServeUserPosts handles GET /api/user-posts.
func (h *Handler) ServeUserPosts(w http.ResponseWriter, r *http.Request) {
	email, ok := callerEmail(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	posts, err := h.Svc.List(ctx, email)
	if err != nil {
		apierr.Write(w, h.Log, "user posts", err)
		return
	}
	jsonio.Write(w, http.StatusOK, posts)
}

type commentResponse struct {
	Message  string           `json:"message"`
	Comments []models.Comment `json:"comments"`
}

// HandleComment handles POST /posts/{id}/comments.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	var in postpolicy.CommentInput
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "add comment", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Svc.AddComment(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		apierr.Write(w, h.Log, "add comment", err)
		return
	}
	jsonio.Write(w, http.StatusCreated, commentResponse{Message: "Comment added successfully", Comments: p.Comments})
}

// HandleEdit handles PUT /api/posts/{id}.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var patch postpolicy.PostPatch
	if err := jsonio.Decode(r, &patch); err != nil {
		apierr.Write(w, h.Log, "edit post", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Svc.Active(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apierr.Write(w, h.Log, "edit post", err)
		return
	}
	if !postpolicy.CanModify(r, p) {
		apierr.WriteMessage(w, http.StatusForbidden, "You can only edit your own posts")
		return
	}
	updated, err := h.Svc.Edit(ctx, p, patch)
	if err != nil {
		apierr.Write(w, h.Log, "edit post", err)
		return
	}
	jsonio.Write(w, http.StatusOK, postResponse{Message: "Post updated successfully", Post: updated})
}
