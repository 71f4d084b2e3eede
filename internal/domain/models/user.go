// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Stored with their display casing; compare with strings.EqualFold.
const (
	RoleUser      = "User"
	RoleModerator = "Moderator"
	RoleAdmin     = "Admin"
)

// User represents a student account or an administrator.
//
// NOTE:
//   - Administrators live in the admins collection with the same shape;
//     everyone else lives in users.
//   - SavedPosts holds bare post IDs. Readers dereference them against posts
//     and skip IDs that no longer resolve to an active post.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped
	StudentID    string             `bson:"student_id" json:"studentId"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	DOB          string             `bson:"dob" json:"dob"`
	Role         string             `bson:"role" json:"role"` // User | Moderator | Admin
	Verified     bool               `bson:"verified" json:"verified"`

	Gender      string `bson:"gender,omitempty" json:"gender"`
	Nationality string `bson:"nationality,omitempty" json:"nationality"`
	Program     string `bson:"program,omitempty" json:"program"`
	Intake      string `bson:"intake,omitempty" json:"intake"`

	JoinedEvents []JoinedEventRef `bson:"joined_events" json:"joinedEvents"`
	VotedEvents  []VoteRecord     `bson:"voted_events" json:"votedEvents"`
	SavedPosts   []string         `bson:"saved_posts" json:"savedPosts"`
	MyEvents     []string         `bson:"my_events" json:"myEvents"`

	Rev       int64     `bson:"rev" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// JoinedEventRef is the compact event reference kept on a user after joining.
type JoinedEventRef struct {
	EventID string `bson:"event_id" json:"eventId"`
	Title   string `bson:"title" json:"title"`
	Date    string `bson:"date" json:"date"`
	Time    string `bson:"time" json:"time"`
}

// VoteRecord remembers which option a user picked in a voting event.
type VoteRecord struct {
	EventID        string `bson:"event_id" json:"eventId"`
	SelectedOption string `bson:"selected_option" json:"selectedOption"`
}

// HasJoined reports whether the user already holds a reference to eventID.
func (u *User) HasJoined(eventID string) bool {
	for _, je := range u.JoinedEvents {
		if je.EventID == eventID {
			return true
		}
	}
	return false
}

// HasVoted reports whether the user already voted in eventID.
func (u *User) HasVoted(eventID string) bool {
	for _, ve := range u.VotedEvents {
		if ve.EventID == eventID {
			return true
		}
	}
	return false
}

// HasSaved reports whether postID is bookmarked.
func (u *User) HasSaved(postID string) bool {
	for _, id := range u.SavedPosts {
		if id == postID {
			return true
		}
	}
	return false
}
