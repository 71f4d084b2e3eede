// internal/app/features/forum/handler.go
package forum

import (
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/authz"
	"go.uber.org/zap"
)

// Handler serves the forum routes.
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

// callerEmail returns the signed-in user's normalized email or writes a 401.
func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	_, email, ok := authz.UserCtx(r)
	if !ok || email == "" {
		apierr.WriteMessage(w, http.StatusUnauthorized, "Access Denied")
		return "", false
	}
	return email, true
}

type postIDRequest struct {
	PostID string `json:"postId"`
}
