package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

type Handler struct {
	DB  Pinger
	Log *zap.Logger
}

func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health. A failed primary ping answers 503 with
// database "disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if h.DB == nil {
		jsonio.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status: "error", Database: "disconnected", Message: "Database not configured",
		})
		return
	}

	if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		jsonio.Write(w, http.StatusServiceUnavailable, healthResponse{
			Status: "error", Database: "disconnected", Message: "Database unavailable",
		})
		return
	}

	jsonio.Write(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}
