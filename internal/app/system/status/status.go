// internal/app/system/status/status.go
package status

// Lifecycle states for posts and events. Deletion is a transition to
// Deleted; documents are never physically removed.
const (
	Active  = "active"
	Deleted = "deleted"
)

// IsValid reports whether s is a known status.
func IsValid(s string) bool {
	return s == Active || s == Deleted
}
