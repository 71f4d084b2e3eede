// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/policy/accountpolicy"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Svc      *Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(svc *Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		AuditLog: audit,
		Log:      logger,
	}
}

// listItem is one row of the directory.
type listItem struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	Program   string `json:"program"`
	Intake    string `json:"intake"`
	Role      string `json:"role"`
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func toListItem(u models.User) listItem {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	return listItem{
		ID:        u.ID.Hex(),
		Username:  orNA(u.Username),
		StudentID: orNA(u.StudentID),
		Email:     orNA(u.Email),
		Program:   orNA(u.Program),
		Intake:    orNA(u.Intake),
		Role:      role,
	}
}

// ServeList handles GET /api/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(query.Get(r, "q"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	list, err := h.Svc.List(ctx, q)
	if err != nil {
		apierr.Write(w, h.Log, "list users", err)
		return
	}
	out := make([]listItem, 0, len(list))
	for _, u := range list {
		out = append(out, toListItem(u))
	}
	jsonio.Write(w, http.StatusOK, out)
}

type updateResponse struct {
	Message     string       `json:"message"`
	UpdatedUser *models.User `json:"updatedUser"`
}

// HandleUpdate handles PUT /api/users/{id}, where id is the account email.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	target := normalize.Email(chi.URLParam(r, "id"))
	if !authz.IsSelfOrAdmin(r, target) {
		apierr.WriteMessage(w, http.StatusForbidden, "You can only update your own profile")
		return
	}
	var in Update
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "update user", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, fields, err := h.Svc.UpdateProfile(ctx, target, in)
	if err != nil {
		apierr.Write(w, h.Log, "update user", err)
		return
	}
	if _, actor, _ := authz.UserCtx(r); actor != target {
		h.AuditLog.UserUpdated(ctx, r, actor, target, strings.Join(fields, ","))
	}
	jsonio.Write(w, http.StatusOK, updateResponse{Message: "User details updated successfully", UpdatedUser: u})
}

type roleRequest struct {
	Role    string `json:"role"`
	NewRole string `json:"newRole"`
}

// HandleChangeRole handles PUT /api/users/{id}/role, where id is the
// account email.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "change role", err)
		return
	}
	role := in.Role
	if role == "" {
		role = in.NewRole
	}
	target := normalize.Email(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	from, to, err := h.Svc.ChangeRole(ctx, target, accountpolicy.RoleChange{Role: role})
	if err != nil {
		apierr.Write(w, h.Log, "change role", err)
		return
	}
	_, actor, _ := authz.UserCtx(r)
	h.AuditLog.RoleChanged(ctx, r, actor, target, from, to)
	jsonio.Write(w, http.StatusOK, map[string]string{
		"message": "User role updated successfully",
		"role":    to,
	})
}
