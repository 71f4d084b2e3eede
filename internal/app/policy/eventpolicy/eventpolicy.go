// Package eventpolicy validates event input and decides who may manage events.
//
// Rules:
//   - title, description, date, time and location are required
//   - a voting event carries at least two options with distinct, non-blank names
//   - only Moderators and Admins create, update or delete events
//   - Admins list every active event; Moderators list the events they created
package eventpolicy

import (
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/inputval"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// MinVoteOptions is the fewest options a voting event may have.
const MinVoteOptions = 2

// OptionInput is one vote option as submitted.
type OptionInput struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Image    string `json:"image"`
}

// EventInput is the create-event request body.
type EventInput struct {
	Title       string        `json:"title" validate:"notblank,max=200" label:"Title"`
	Description string        `json:"description" validate:"notblank,max=5000" label:"Description"`
	Date        string        `json:"date" validate:"notblank" label:"Date"`
	Time        string        `json:"time" validate:"notblank" label:"Time"`
	Location    string        `json:"location" validate:"notblank,max=200" label:"Location"`
	Image       string        `json:"image"`
	EventType   string        `json:"eventType"`
	VoteOptions []OptionInput `json:"voteOptions"`
}

// CheckCreate validates in as an event of eventType and returns the event
// to insert. eventType overrides in.EventType when non-empty.
func CheckCreate(in EventInput, eventType string) (models.Event, error) {
	if eventType == "" {
		eventType = strings.ToLower(strings.TrimSpace(in.EventType))
	}
	if eventType == "" {
		eventType = models.EventTypeNormal
	}
	if eventType != models.EventTypeNormal && eventType != models.EventTypeVoting {
		return models.Event{}, apierr.Validation("eventType must be normal or voting")
	}
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Event{}, err
	}

	e := models.Event{
		Title:       normalize.Name(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Location:    normalize.Name(in.Location),
		Image:       strings.TrimSpace(in.Image),
		EventType:   eventType,
	}
	if eventType == models.EventTypeVoting {
		opts, err := CheckOptions(in.VoteOptions)
		if err != nil {
			return models.Event{}, err
		}
		e.VoteOptions = opts
	}
	return e, nil
}

// CheckOptions validates a voting event's option list and returns fresh
// options with zero tallies.
func CheckOptions(in []OptionInput) ([]models.VoteOption, error) {
	if len(in) < MinVoteOptions {
		return nil, apierr.Validation("Voting events require at least %d vote options", MinVoteOptions)
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]models.VoteOption, 0, len(in))
	for _, o := range in {
		name := normalize.Name(o.Name)
		if name == "" {
			return nil, apierr.Validation("Vote option names must not be empty")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return nil, apierr.Validation("Vote option %q is listed more than once", name)
		}
		seen[key] = struct{}{}
		out = append(out, models.VoteOption{
			Name:       name,
			Position:   strings.TrimSpace(o.Position),
			Image:      strings.TrimSpace(o.Image),
			VotedUsers: []string{},
		})
	}
	return out, nil
}

// MergeOptions applies a replacement option list to existing options.
// Options whose name survives, compared case-insensitively like
// CheckOptions, keep their tallies; new names start at zero.
func MergeOptions(existing []models.VoteOption, in []OptionInput) ([]models.VoteOption, error) {
	next, err := CheckOptions(in)
	if err != nil {
		return nil, err
	}
	prior := make(map[string]models.VoteOption, len(existing))
	for _, o := range existing {
		prior[strings.ToLower(o.Name)] = o
	}
	for i := range next {
		if old, ok := prior[strings.ToLower(next[i].Name)]; ok {
			next[i].VotedUsers = append([]string{}, old.VotedUsers...)
			next[i].Votes = len(next[i].VotedUsers)
		}
	}
	return next, nil
}

// EventPatch is the update-event body. Nil fields are left unchanged.
// Identity, status, creator and participation fields are not patchable.
type EventPatch struct {
	Title       *string        `json:"title" validate:"omitempty,notblank,max=200" label:"Title"`
	Description *string        `json:"description" validate:"omitempty,notblank,max=5000" label:"Description"`
	Date        *string        `json:"date" validate:"omitempty,notblank" label:"Date"`
	Time        *string        `json:"time" validate:"omitempty,notblank" label:"Time"`
	Location    *string        `json:"location" validate:"omitempty,notblank,max=200" label:"Location"`
	Image       *string        `json:"image"`
	VoteOptions *[]OptionInput `json:"voteOptions"`
}

// ApplyPatch validates p and merges it onto e. Vote options keep the
// tallies of names that survive the edit.
func ApplyPatch(e *models.Event, p EventPatch) error {
	if err := inputval.Validate(p).Err(); err != nil {
		return err
	}
	if p.VoteOptions != nil {
		if !e.IsVoting() {
			return apierr.Validation("Only voting events have vote options")
		}
		opts, err := MergeOptions(e.VoteOptions, *p.VoteOptions)
		if err != nil {
			return err
		}
		e.VoteOptions = opts
	}
	if p.Title != nil {
		e.Title = normalize.Name(*p.Title)
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		e.Date = strings.TrimSpace(*p.Date)
	}
	if p.Time != nil {
		e.Time = strings.TrimSpace(*p.Time)
	}
	if p.Location != nil {
		e.Location = normalize.Name(*p.Location)
	}
	if p.Image != nil {
		e.Image = strings.TrimSpace(*p.Image)
	}
	return nil
}

// CanManage reports whether role may create, update or delete events.
func CanManage(role string) bool {
	switch normalize.Role(role) {
	case models.RoleModerator, models.RoleAdmin:
		return true
	}
	return false
}

// ListScope is what the role-scoped listing may show.
type ListScope struct {
	CanList      bool
	CreatorEmail string // empty with CanList means every active event
}

// ScopeFor returns the listing scope for an account.
func ScopeFor(role, email string) ListScope {
	switch normalize.Role(role) {
	case models.RoleAdmin:
		return ListScope{CanList: true}
	case models.RoleModerator:
		return ListScope{CanList: true, CreatorEmail: normalize.Email(email)}
	}
	return ListScope{}
}
