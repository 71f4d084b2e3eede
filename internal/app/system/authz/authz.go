// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// UserCtx returns the user's canonical role, email, and a found flag.
// With no user in context it returns "", "", false. An unrecognized role
// is reported as User so it never grants more than the default.
func UserCtx(r *http.Request) (role string, email string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", false
	}
	role = normalize.Role(user.Role)
	if role == "" {
		role = models.RoleUser
	}
	return role, normalize.Email(user.Email), true
}

// IsAdmin reports whether the current request's user is an administrator.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsModeratorOrAdmin reports whether the user may moderate content.
func IsModeratorOrAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && (role == models.RoleModerator || role == models.RoleAdmin)
}

// CanModerate reports whether the user owns the content written by
// ownerEmail or is a moderator/admin.
func CanModerate(r *http.Request, ownerEmail string) bool {
	_, email, ok := UserCtx(r)
	if !ok {
		return false
	}
	return email == normalize.Email(ownerEmail) || IsModeratorOrAdmin(r)
}

// IsSelfOrAdmin reports whether the user is the account owner of email or
// an administrator.
func IsSelfOrAdmin(r *http.Request, email string) bool {
	_, self, ok := UserCtx(r)
	if !ok {
		return false
	}
	return strings.EqualFold(self, normalize.Email(email)) || IsAdmin(r)
}
