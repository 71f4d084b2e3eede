package users_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/users"
	"github.com/dalemusser/campushub/internal/app/store/audit"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*users.Handler, *testutil.Fixtures, *audit.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	audits := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db", Admin: "db"})
	return users.NewHandler(users.NewService(db, zap.NewNop()), audits, zap.NewNop()), testutil.NewFixtures(t, db), store
}

func TestServeList_DefaultsAndSearch(t *testing.T) {
	h, fx, _ := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	fx.CreateUser(ctx, "Bob", "bob@imail.sunway.edu.my", models.RoleUser)

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/api/users", nil, mod))
	rec.AssertStatus(t, http.StatusOK)
	var all []map[string]string
	rec.DecodeJSON(t, &all)
	if len(all) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all))
	}
	for _, u := range all {
		if u["program"] != "N/A" || u["intake"] != "N/A" {
			t.Errorf("expected N/A defaults, got %v", u)
		}
	}

	rec = testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest(t, "GET", "/api/users?q=ali", nil, mod))
	rec.AssertStatus(t, http.StatusOK)
	var found []map[string]string
	rec.DecodeJSON(t, &found)
	if len(found) != 1 || found[0]["email"] != "alice@imail.sunway.edu.my" {
		t.Errorf("search result = %v, want only alice", found)
	}
}

func TestHandleUpdate(t *testing.T) {
	h, fx, store := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	bob := fx.CreateUser(ctx, "Bob", "bob@imail.sunway.edu.my", models.RoleUser)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@sunway.edu.my")

	update := func(as models.User, body any) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(t, "PUT", "/api/users/"+alice.Email, body, as), "id", alice.Email)
		h.HandleUpdate(rec, req)
		return rec
	}

	rec := update(bob, map[string]string{"program": "CS"})
	rec.AssertStatus(t, http.StatusForbidden)

	rec = update(alice, map[string]any{
		"program":    "Computer Science",
		"savedPosts": "not-an-array",
		"role":       "Admin",
		"verified":   false,
	})
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Message     string      `json:"message"`
		UpdatedUser models.User `json:"updatedUser"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Message != "User details updated successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.UpdatedUser.Program != "Computer Science" {
		t.Errorf("program = %q", resp.UpdatedUser.Program)
	}
	if resp.UpdatedUser.Role != models.RoleUser || !resp.UpdatedUser.Verified {
		t.Errorf("role/verified changed through profile update: %+v", resp.UpdatedUser)
	}
	if resp.UpdatedUser.SavedPosts == nil || len(resp.UpdatedUser.SavedPosts) != 0 {
		t.Errorf("savedPosts = %v, want []", resp.UpdatedUser.SavedPosts)
	}

	rec = update(admin, map[string]string{"intake": "2026-09"})
	rec.AssertStatus(t, http.StatusOK)
	logged, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventUserUpdated})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(logged) != 1 {
		t.Errorf("user-updated audit events = %d, want 1", len(logged))
	}
}

func TestHandleChangeRole(t *testing.T) {
	h, fx, store := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@sunway.edu.my")

	tests := []struct {
		name   string
		target string
		body   map[string]string
		want   int
	}{
		{"promote", alice.Email, map[string]string{"role": "Moderator"}, http.StatusOK},
		{"newRole alias", alice.Email, map[string]string{"newRole": "user"}, http.StatusOK},
		{"admin not assignable", alice.Email, map[string]string{"role": "Admin"}, http.StatusBadRequest},
		{"unknown user", "ghost@imail.sunway.edu.my", map[string]string{"role": "User"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(t, "PUT", "/api/users/"+tt.target+"/role", tt.body, admin), "id", tt.target)
			h.HandleChangeRole(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}

	logged, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventRoleChanged})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(logged) != 2 {
		t.Errorf("role-changed audit events = %d, want 2", len(logged))
	}
}
