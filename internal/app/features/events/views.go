// internal/app/features/events/views.go
package events

import (
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
)

// optionView is a vote option without its voter emails.
type optionView struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Image    string `json:"image"`
	Votes    int    `json:"votes"`
}

// eventView is the listing shape of an event. Voter emails stay server side;
// participants are listed because the join flow shows them.
type eventView struct {
	EventID      string               `json:"eventId"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Date         string               `json:"date"`
	Time         string               `json:"time"`
	Location     string               `json:"location"`
	Image        string               `json:"image"`
	EventType    string               `json:"eventType"`
	CreatorEmail string               `json:"creatorEmail"`
	Status       string               `json:"status"`
	JoinedUsers  []models.Participant `json:"joinedUsers"`
	TotalJoined  int                  `json:"totalJoined"`
	VoteOptions  []optionView         `json:"voteOptions,omitempty"`
	DateCreated  time.Time            `json:"dateCreated"`
}

func optionViews(opts []models.VoteOption) []optionView {
	if opts == nil {
		return nil
	}
	out := make([]optionView, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionView{Name: o.Name, Position: o.Position, Image: o.Image, Votes: o.Votes})
	}
	return out
}

func toView(e models.Event) eventView {
	joined := e.JoinedUsers
	if joined == nil {
		joined = []models.Participant{}
	}
	return eventView{
		EventID:      e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Date:         e.Date,
		Time:         e.Time,
		Location:     e.Location,
		Image:        e.Image,
		EventType:    e.EventType,
		CreatorEmail: e.CreatorEmail,
		Status:       e.Status,
		JoinedUsers:  joined,
		TotalJoined:  e.TotalJoined,
		VoteOptions:  optionViews(e.VoteOptions),
		DateCreated:  e.DateCreated,
	}
}

func toViews(list []models.Event) []eventView {
	out := make([]eventView, 0, len(list))
	for _, e := range list {
		out = append(out, toView(e))
	}
	return out
}

// joinedDetail is the resolved form of a joined-event reference.
type joinedDetail struct {
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Status      string `json:"status"`
}
