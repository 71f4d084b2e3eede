package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// User is the identity carried by a verified access token and injected
// into r.Context().
type User struct {
	ID    string
	Email string
	Role  string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*User)
	return u, ok
}

// WithTestUser injects u into the request context. Handler tests use it in
// place of a signed token.
func WithTestUser(r *http.Request, u *User) *http.Request {
	return withUser(r, u)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireSignedIn verifies the bearer access token and injects its user.
//   - no token:            401 {"message":"Access Denied"}
//   - bad/expired token:   403 {"message":"Invalid Token"}
func (i *Issuer) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			apierr.WriteMessage(w, http.StatusUnauthorized, "Access Denied")
			return
		}
		c, err := i.ParseAccess(token)
		if err != nil {
			apierr.WriteMessage(w, http.StatusForbidden, "Invalid Token")
			return
		}
		next.ServeHTTP(w, withUser(r, &User{ID: c.UserID, Email: c.Email, Role: c.Role}))
	})
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// Mount it after RequireSignedIn. Role names compare case-insensitively.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				apierr.WriteMessage(w, http.StatusUnauthorized, "Access Denied")
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				apierr.WriteMessage(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withUser(r *http.Request, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
