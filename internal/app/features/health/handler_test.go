package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/health"
	"github.com/dalemusser/campushub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

type downPinger struct{}

func (downPinger) Ping(context.Context, *readpref.ReadPref) error {
	return errors.New("server selection timeout")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) healthBody {
	t.Helper()
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return body
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	body := decode(t, rec)
	if body.Status != "ok" || body.Database != "connected" {
		t.Errorf("unexpected body %+v", body)
	}
	if body.Message != "" {
		t.Errorf("message should be omitted on success, got %q", body.Message)
	}
}

func TestServe_DatabaseUnreachable(t *testing.T) {
	tests := []struct {
		name string
		db   health.Pinger
	}{
		{"ping fails", downPinger{}},
		{"no client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			health.NewHandler(tt.db, zap.NewNop()).Serve(rec, httptest.NewRequest("GET", "/health", nil))

			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
			}
			body := decode(t, rec)
			if body.Status != "error" || body.Database != "disconnected" || body.Message == "" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := chi.NewRouter()
	health.Routes(r, health.NewHandler(db.Client(), zap.NewNop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
