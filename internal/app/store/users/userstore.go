package userstore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/campushub/internal/app/store/revision"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no account matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "User"|"Moderator"|"Admin"`)
)

// Store reads and writes one account collection (users or admins).
type Store struct {
	c *mongo.Collection
}

// New returns the store for student and moderator accounts.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NewAdmins returns the store for administrator accounts.
func NewAdmins(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// Name returns the backing collection name.
func (s *Store) Name() string { return s.c.Name() }

// GetByID loads an account by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up an account by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Username = normalize.Name(u.Username)
	u.UsernameCI = text.Fold(u.Username)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Role = normalize.Role(u.Role); u.Role == "" {
		return models.User{}, errBadRole
	}
	fillSlices(&u)

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Rev = 1

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Replace writes u back if nobody else changed it since it was read.
// On success u.Rev is advanced; on revision.ErrConflict it is left as read.
func (s *Store) Replace(ctx context.Context, u *models.User) error {
	read := u.Rev
	prevUpdated := u.UpdatedAt
	u.Rev = read + 1
	u.UpdatedAt = time.Now()
	u.UsernameCI = text.Fold(u.Username)
	fillSlices(u)
	if err := revision.Replace(ctx, s.c, u.ID, read, u); err != nil {
		u.Rev = read
		u.UpdatedAt = prevUpdated
		return err
	}
	return nil
}

// Restore puts prior back over the document currently at rev current.
// It undoes a Replace when a later step of the same workflow fails.
func (s *Store) Restore(ctx context.Context, prior models.User, current int64) error {
	prior.Rev = current + 1
	return revision.Replace(ctx, s.c, prior.ID, current, prior)
}

// List returns accounts ordered by folded username. A non-empty q keeps
// accounts whose folded username or email starts with q.
func (s *Store) List(ctx context.Context, q string) ([]models.User, error) {
	filter := bson.M{}
	if q = strings.TrimSpace(q); q != "" {
		filter["$or"] = bson.A{
			bson.M{"username_ci": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(text.Fold(q))}},
			bson.M{"email": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(normalize.Email(q))}},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "username_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PullSavedPost removes postID from every account's saved posts with a
// single update. Returns the number of accounts changed.
func (s *Store) PullSavedPost(ctx context.Context, postID string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"saved_posts": postID},
		bson.M{
			"$pull": bson.M{"saved_posts": postID},
			"$inc":  bson.M{"rev": 1},
			"$set":  bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByEmail reports how many accounts use email (0 or 1 with the unique index).
func (s *Store) CountByEmail(ctx context.Context, email string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"email": normalize.Email(email)})
}

func fillSlices(u *models.User) {
	if u.JoinedEvents == nil {
		u.JoinedEvents = []models.JoinedEventRef{}
	}
	if u.VotedEvents == nil {
		u.VotedEvents = []models.VoteRecord{}
	}
	if u.SavedPosts == nil {
		u.SavedPosts = []string{}
	}
	if u.MyEvents == nil {
		u.MyEvents = []string{}
	}
}
