// internal/app/features/events/handler.go
package events

import (
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler serves the event routes.
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

// caller returns the signed-in user or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.Email == "" {
		apierr.WriteMessage(w, http.StatusUnauthorized, "Access Denied")
		return nil, false
	}
	return u, true
}
