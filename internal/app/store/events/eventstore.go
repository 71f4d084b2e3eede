package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campushub/internal/app/store/counters"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	"github.com/dalemusser/campushub/internal/app/system/status"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when an event is missing or soft-deleted.
var ErrNotFound = errors.New("event not found")

const counterName = "events"

type Store struct {
	c   *mongo.Collection
	seq *counters.Store
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events"), seq: counters.New(db)}
}

// ListFilter narrows ListActive. Zero values match everything.
type ListFilter struct {
	EventType    string
	CreatorEmail string
}

// Create mints the next event-<n> ID and inserts e as active.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	n, err := s.seq.Next(ctx, counterName)
	if err != nil {
		return models.Event{}, fmt.Errorf("next event id: %w", err)
	}
	e.ID = fmt.Sprintf("event-%d", n)
	e.Status = status.Active
	if e.EventType == "" {
		e.EventType = models.EventTypeNormal
	}
	if e.JoinedUsers == nil {
		e.JoinedUsers = []models.Participant{}
	}
	e.TotalJoined = len(e.JoinedUsers)
	for i := range e.VoteOptions {
		if e.VoteOptions[i].VotedUsers == nil {
			e.VoteOptions[i].VotedUsers = []string{}
		}
		e.VoteOptions[i].Votes = len(e.VoteOptions[i].VotedUsers)
	}

	now := time.Now()
	e.DateCreated = now
	e.UpdatedAt = now
	e.Rev = 1

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByID loads an event whatever its status.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetActive loads an event that has not been deleted.
func (s *Store) GetActive(ctx context.Context, id string) (*models.Event, error) {
	return s.findOne(ctx, bson.M{"_id": id, "status": status.Active})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListActive returns active events matching f, newest first.
func (s *Store) ListActive(ctx context.Context, f ListFilter) ([]models.Event, error) {
	filter := bson.M{"status": status.Active}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if f.CreatorEmail != "" {
		filter["creator_email"] = f.CreatorEmail
	}
	return s.find(ctx, filter, bson.D{{Key: "date_created", Value: -1}, {Key: "_id", Value: -1}})
}

// ListActiveByIDs returns the active events among ids, keyed by ID.
func (s *Store) ListActiveByIDs(ctx context.Context, ids []string) (map[string]models.Event, error) {
	out := make(map[string]models.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}, "status": status.Active}, nil)
	if err != nil {
		return nil, err
	}
	for _, e := range found {
		out[e.ID] = e
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Event, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Event{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes e back if its revision is still current. Derived counts
// are recomputed from the membership lists before writing.
func (s *Store) Replace(ctx context.Context, e *models.Event) error {
	read := e.Rev
	prevUpdated := e.UpdatedAt
	e.Rev = read + 1
	e.UpdatedAt = time.Now()
	syncCounts(e)
	if err := revision.Replace(ctx, s.c, e.ID, read, e); err != nil {
		e.Rev = read
		e.UpdatedAt = prevUpdated
		return err
	}
	return nil
}

// Restore puts prior back over the document currently at rev current.
func (s *Store) Restore(ctx context.Context, prior models.Event, current int64) error {
	prior.Rev = current + 1
	return revision.Replace(ctx, s.c, prior.ID, current, prior)
}

func syncCounts(e *models.Event) {
	e.TotalJoined = len(e.JoinedUsers)
	for i := range e.VoteOptions {
		e.VoteOptions[i].Votes = len(e.VoteOptions[i].VotedUsers)
	}
}
