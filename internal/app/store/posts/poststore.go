package poststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/app/store/revision"
	"github.com/dalemusser/campushub/internal/app/system/status"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a post is missing or soft-deleted.
var ErrNotFound = errors.New("post not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

// Create inserts p as a new active post with a fresh hex ID.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = primitive.NewObjectID().Hex()
	p.Status = status.Active
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	if p.FlaggedBy == nil {
		p.FlaggedBy = []string{}
	}
	p.FlagCount = len(p.FlaggedBy)
	p.FlagVerified = p.FlagCount > 0

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Rev = 1

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// GetByID loads a post whatever its status.
func (s *Store) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetActive loads a post that has not been deleted.
func (s *Store) GetActive(ctx context.Context, id string) (*models.Post, error) {
	return s.findOne(ctx, bson.M{"_id": id, "status": status.Active})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListActive returns every active post, newest first.
func (s *Store) ListActive(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, bson.M{"status": status.Active}, newestFirst)
}

// ListByAuthor returns the active posts written by email, newest first.
func (s *Store) ListByAuthor(ctx context.Context, email string) ([]models.Post, error) {
	return s.find(ctx, bson.M{"status": status.Active, "author_email": email}, newestFirst)
}

// ListFlagged returns active posts with at least one flag, most flagged first.
func (s *Store) ListFlagged(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx,
		bson.M{"status": status.Active, "flag_count": bson.M{"$gt": 0}},
		bson.D{{Key: "flag_count", Value: -1}, {Key: "created_at", Value: -1}})
}

// FindActiveByIDs returns the active posts among ids in the order of ids.
// IDs that do not resolve to an active post are skipped.
func (s *Store) FindActiveByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	found, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}, "status": status.Active}, nil)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
			delete(byID, id)
		}
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Post, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace writes p back if its revision is still current.
func (s *Store) Replace(ctx context.Context, p *models.Post) error {
	read := p.Rev
	prevUpdated := p.UpdatedAt
	p.Rev = read + 1
	p.UpdatedAt = time.Now()
	p.FlagCount = len(p.FlaggedBy)
	if err := revision.Replace(ctx, s.c, p.ID, read, p); err != nil {
		p.Rev = read
		p.UpdatedAt = prevUpdated
		return err
	}
	return nil
}
