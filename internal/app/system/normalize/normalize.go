// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"

	"github.com/dalemusser/campushub/internal/domain/models"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role maps any casing of a known role to its canonical form.
// Unknown or empty input returns "".
func Role(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return models.RoleUser
	case "moderator":
		return models.RoleModerator
	case "admin":
		return models.RoleAdmin
	}
	return ""
}

// QueryParam trims a query-string value and preserves case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
