package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/authz"
)

func reqAs(role, email string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	if role == "" && email == "" {
		return req
	}
	return auth.WithTestUser(req, &auth.User{ID: "u1", Email: email, Role: role})
}

func TestUserCtx(t *testing.T) {
	tests := []struct {
		name      string
		req       *http.Request
		wantRole  string
		wantEmail string
		wantOK    bool
	}{
		{"no user", reqAs("", ""), "", "", false},
		{"canonical role", reqAs("moderator", "Mod@X.my"), "Moderator", "mod@x.my", true},
		{"unknown role degrades to User", reqAs("root", "a@x.my"), "User", "a@x.my", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, email, ok := authz.UserCtx(tt.req)
			if role != tt.wantRole || email != tt.wantEmail || ok != tt.wantOK {
				t.Errorf("UserCtx = (%q, %q, %v), want (%q, %q, %v)",
					role, email, ok, tt.wantRole, tt.wantEmail, tt.wantOK)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role        string
		wantAdmin   bool
		wantModOrAd bool
	}{
		{"Admin", true, true},
		{"Moderator", false, true},
		{"User", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := reqAs(tt.role, "x@x.my")
			if tt.role == "" {
				req = reqAs("", "")
			}
			if got := authz.IsAdmin(req); got != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.wantAdmin)
			}
			if got := authz.IsModeratorOrAdmin(req); got != tt.wantModOrAd {
				t.Errorf("IsModeratorOrAdmin = %v, want %v", got, tt.wantModOrAd)
			}
			if got := authz.HasAnyRole(req, "moderator", "admin"); got != tt.wantModOrAd {
				t.Errorf("HasAnyRole = %v, want %v", got, tt.wantModOrAd)
			}
		})
	}
}

func TestCanModerate(t *testing.T) {
	tests := []struct {
		name  string
		req   *http.Request
		owner string
		want  bool
	}{
		{"author", reqAs("User", "a@x.my"), "A@x.my", true},
		{"other user", reqAs("User", "b@x.my"), "a@x.my", false},
		{"moderator", reqAs("Moderator", "m@x.my"), "a@x.my", true},
		{"anonymous", reqAs("", ""), "a@x.my", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanModerate(tt.req, tt.owner); got != tt.want {
				t.Errorf("CanModerate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsSelfOrAdmin(t *testing.T) {
	tests := []struct {
		name   string
		req    *http.Request
		target string
		want   bool
	}{
		{"self", reqAs("User", "a@x.my"), "a@x.my", true},
		{"admin", reqAs("Admin", "admin@x.my"), "a@x.my", true},
		{"moderator is not enough", reqAs("Moderator", "m@x.my"), "a@x.my", false},
		{"other user", reqAs("User", "b@x.my"), "a@x.my", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.IsSelfOrAdmin(tt.req, tt.target); got != tt.want {
				t.Errorf("IsSelfOrAdmin = %v, want %v", got, tt.want)
			}
		})
	}
}
