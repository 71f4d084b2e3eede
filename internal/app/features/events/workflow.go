package events

import (
	"strings"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/domain/models"
)

// Participation rules. Each check runs against the documents as read; the
// apply helpers mutate copies that are then written under revision control.

func checkJoin(e *models.Event, u *models.User) error {
	if e.IsVoting() {
		return apierr.Validation("Voting events take votes, not joins")
	}
	if e.HasParticipant(u.Email) || u.HasJoined(e.ID) {
		return apierr.Duplicate("You have already joined this event.")
	}
	return nil
}

func addParticipant(e *models.Event, u models.User) {
	e.JoinedUsers = append(e.JoinedUsers, models.Participant{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	})
	e.TotalJoined = len(e.JoinedUsers)
}

func addJoinedRef(u *models.User, e models.Event) {
	u.JoinedEvents = append(u.JoinedEvents, models.JoinedEventRef{
		EventID: e.ID,
		Title:   e.Title,
		Date:    e.Date,
		Time:    e.Time,
	})
}

// checkVote returns the index of the chosen option.
func checkVote(e *models.Event, u *models.User, option string) (int, error) {
	if !e.IsVoting() {
		return -1, apierr.NotFound("Voting event not found")
	}
	if u.HasVoted(e.ID) {
		return -1, apierr.Duplicate("User has already voted for this event")
	}
	option = strings.TrimSpace(option)
	if option == "" {
		return -1, apierr.Validation("selectedOption is required")
	}
	idx := e.OptionIndex(option)
	if idx < 0 {
		return -1, apierr.NotFound("Vote option not found")
	}
	return idx, nil
}

func addVote(e *models.Event, idx int, email string) {
	opt := &e.VoteOptions[idx]
	opt.VotedUsers = append(opt.VotedUsers, email)
	opt.Votes = len(opt.VotedUsers)
}

func addVoteRecord(u *models.User, eventID, option string) {
	u.VotedEvents = append(u.VotedEvents, models.VoteRecord{
		EventID:        eventID,
		SelectedOption: option,
	})
}

// cloneEvent copies e deeply enough that edits to the copy never reach
// the original's slices.
func cloneEvent(e models.Event) models.Event {
	out := e
	out.JoinedUsers = append([]models.Participant{}, e.JoinedUsers...)
	if e.VoteOptions != nil {
		out.VoteOptions = make([]models.VoteOption, len(e.VoteOptions))
		for i, o := range e.VoteOptions {
			o.VotedUsers = append([]string{}, o.VotedUsers...)
			out.VoteOptions[i] = o
		}
	}
	return out
}

func cloneUser(u models.User) models.User {
	out := u
	out.JoinedEvents = append([]models.JoinedEventRef{}, u.JoinedEvents...)
	out.VotedEvents = append([]models.VoteRecord{}, u.VotedEvents...)
	out.SavedPosts = append([]string{}, u.SavedPosts...)
	out.MyEvents = append([]string{}, u.MyEvents...)
	return out
}
