// internal/domain/models/event.go
package models

import "time"

// Event types.
const (
	EventTypeNormal = "normal"
	EventTypeVoting = "voting"
)

// Event is either a normal event users join, or a voting event where each
// user picks exactly one option.
//
// NOTE:
//   - TotalJoined mirrors len(JoinedUsers); option Votes mirrors
//     len(VotedUsers). Writers keep both in step.
//   - IDs are "event-<n>" minted from the counters collection.
type Event struct {
	ID           string `bson:"_id" json:"eventId"`
	Title        string `bson:"title" json:"title"`
	Description  string `bson:"description" json:"description"`
	Date         string `bson:"date" json:"date"`
	Time         string `bson:"time" json:"time"`
	Location     string `bson:"location" json:"location"`
	Image        string `bson:"image,omitempty" json:"image"`
	EventType    string `bson:"event_type" json:"eventType"` // normal | voting
	CreatorEmail string `bson:"creator_email" json:"creatorEmail"`
	Status       string `bson:"status" json:"status"` // active | deleted

	JoinedUsers []Participant `bson:"joined_users" json:"joinedUsers"`
	TotalJoined int           `bson:"total_joined" json:"totalJoined"`
	VoteOptions []VoteOption  `bson:"vote_options,omitempty" json:"voteOptions,omitempty"`

	Rev         int64     `bson:"rev" json:"-"`
	DateCreated time.Time `bson:"date_created" json:"dateCreated"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// Participant is the compact user reference stored on an event.
type Participant struct {
	UserID   string `bson:"user_id" json:"userId"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
}

// VoteOption is a named choice on a voting event.
type VoteOption struct {
	Name       string   `bson:"name" json:"name"`
	Position   string   `bson:"position,omitempty" json:"position"`
	Image      string   `bson:"image,omitempty" json:"image"`
	Votes      int      `bson:"votes" json:"votes"`
	VotedUsers []string `bson:"voted_users" json:"votedUsers"` // emails
}

// IsVoting reports whether the event is a voting event.
func (e *Event) IsVoting() bool {
	return e.EventType == EventTypeVoting
}

// HasParticipant reports whether email already joined the event.
func (e *Event) HasParticipant(email string) bool {
	for _, p := range e.JoinedUsers {
		if p.Email == email {
			return true
		}
	}
	return false
}

// OptionIndex returns the index of the option named name, or -1.
func (e *Event) OptionIndex(name string) int {
	for i, o := range e.VoteOptions {
		if o.Name == name {
			return i
		}
	}
	return -1
}
