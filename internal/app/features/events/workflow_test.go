package events

import (
	"testing"

	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleUser(email string) models.User {
	return models.User{ID: primitive.NewObjectID(), Email: email, Username: "u"}
}

func TestJoinWorkflow(t *testing.T) {
	e := models.Event{ID: "event-1", Title: "Fair", EventType: models.EventTypeNormal}
	u := sampleUser("a@x.my")

	require.NoError(t, checkJoin(&e, &u))
	addParticipant(&e, u)
	addJoinedRef(&u, e)

	assert.Equal(t, 1, e.TotalJoined)
	assert.Equal(t, u.ID.Hex(), e.JoinedUsers[0].UserID)
	assert.True(t, u.HasJoined("event-1"))

	err := checkJoin(&e, &u)
	assert.True(t, apierr.IsKind(err, apierr.KindDuplicate))

	// either side alone is enough to detect a repeat
	other := sampleUser("a@x.my")
	assert.Error(t, checkJoin(&e, &other))
	fresh := models.Event{ID: "event-1", EventType: models.EventTypeNormal}
	assert.Error(t, checkJoin(&fresh, &u))

	voting := models.Event{ID: "event-2", EventType: models.EventTypeVoting}
	assert.True(t, apierr.IsKind(checkJoin(&voting, &other), apierr.KindValidation))
}

func TestVoteWorkflow(t *testing.T) {
	e := models.Event{
		ID:        "event-3",
		EventType: models.EventTypeVoting,
		VoteOptions: []models.VoteOption{
			{Name: "A", VotedUsers: []string{}},
			{Name: "B", VotedUsers: []string{}},
		},
	}
	u := sampleUser("v@x.my")

	_, err := checkVote(&e, &u, "C")
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))

	idx, err := checkVote(&e, &u, " A ")
	require.NoError(t, err)
	addVote(&e, idx, u.Email)
	addVoteRecord(&u, e.ID, "A")

	assert.Equal(t, 1, e.VoteOptions[0].Votes)
	assert.Equal(t, 0, e.VoteOptions[1].Votes)

	for _, opt := range []string{"A", "B"} {
		_, err := checkVote(&e, &u, opt)
		assert.True(t, apierr.IsKind(err, apierr.KindDuplicate), "repeat vote on %s", opt)
	}

	normal := models.Event{ID: "event-4", EventType: models.EventTypeNormal}
	_, err = checkVote(&normal, &u, "A")
	assert.True(t, apierr.IsKind(err, apierr.KindNotFound))
}

func TestCloneEvent_IsolatesSlices(t *testing.T) {
	e := models.Event{
		JoinedUsers: []models.Participant{{Email: "a@x.my"}},
		VoteOptions: []models.VoteOption{{Name: "A", VotedUsers: make([]string, 0, 4)}},
	}
	c := cloneEvent(e)
	addVote(&c, 0, "b@x.my")
	addParticipant(&c, sampleUser("c@x.my"))

	assert.Empty(t, e.VoteOptions[0].VotedUsers)
	assert.Len(t, e.JoinedUsers, 1)
	assert.Len(t, c.JoinedUsers, 2)
}

func TestCloneUser_IsolatesSlices(t *testing.T) {
	u := sampleUser("a@x.my")
	u.JoinedEvents = make([]models.JoinedEventRef, 0, 4)
	c := cloneUser(u)
	addJoinedRef(&c, models.Event{ID: "event-9"})

	assert.Empty(t, u.JoinedEvents)
	assert.True(t, c.HasJoined("event-9"))
}
