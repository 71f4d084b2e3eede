package events

import "context"

// SetBeforeAccountWrite installs fn to run ahead of the account step of
// join and vote.
func SetBeforeAccountWrite(s *Service, fn func(ctx context.Context, email string)) {
	s.beforeAccountWrite = fn
}
