package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campushub/internal/app/store/counters"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain password of every fixture account.
const TestPassword = "Secure#Pass1"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a verified account in the users collection.
func (f *Fixtures) CreateUser(ctx context.Context, username, email, role string) models.User {
	f.t.Helper()
	return f.insertAccount(ctx, "users", username, email, role)
}

// CreateModerator creates a verified moderator.
func (f *Fixtures) CreateModerator(ctx context.Context, username, email string) models.User {
	f.t.Helper()
	return f.insertAccount(ctx, "users", username, email, models.RoleModerator)
}

// CreateAdmin creates an administrator in the admins collection.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, email string) models.User {
	f.t.Helper()
	return f.insertAccount(ctx, "admins", username, email, models.RoleAdmin)
}

func (f *Fixtures) insertAccount(ctx context.Context, coll, username, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Username:     username,
		UsernameCI:   text.Fold(username),
		StudentID:    fmt.Sprintf("S%06d", now.UnixNano()%1000000),
		PasswordHash: string(hash),
		DOB:          "2000-01-01",
		Role:         role,
		Verified:     true,
		JoinedEvents: []models.JoinedEventRef{},
		VotedEvents:  []models.VoteRecord{},
		SavedPosts:   []string{},
		MyEvents:     []string{},
		Rev:          1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection(coll).InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test %s account: %v", coll, err)
	}
	return user
}

// CreatePost creates an active post written by author.
func (f *Fixtures) CreatePost(ctx context.Context, title string, author models.User) models.Post {
	f.t.Helper()

	now := time.Now().UTC()
	post := models.Post{
		ID:          primitive.NewObjectID().Hex(),
		Title:       title,
		Content:     "Content of " + title,
		AuthorEmail: author.Email,
		Username:    author.Username,
		StudentID:   author.StudentID,
		Comments:    []models.Comment{},
		FlaggedBy:   []string{},
		Status:      "active",
		Rev:         1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("posts").InsertOne(ctx, post); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// CreateEvent creates an active normal event owned by creator.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, creator models.User) models.Event {
	f.t.Helper()
	return f.insertEvent(ctx, title, creator, models.EventTypeNormal, nil)
}

// CreateVotingEvent creates an active voting event with the named options.
func (f *Fixtures) CreateVotingEvent(ctx context.Context, title string, creator models.User, names ...string) models.Event {
	f.t.Helper()
	opts := make([]models.VoteOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, models.VoteOption{Name: name, VotedUsers: []string{}})
	}
	return f.insertEvent(ctx, title, creator, models.EventTypeVoting, opts)
}

func (f *Fixtures) insertEvent(ctx context.Context, title string, creator models.User, eventType string, opts []models.VoteOption) models.Event {
	f.t.Helper()

	seq := f.nextEventSeq(ctx)
	now := time.Now().UTC()
	event := models.Event{
		ID:           fmt.Sprintf("event-%d", seq),
		Title:        title,
		Description:  "About " + title,
		Date:         "2026-11-01",
		Time:         "10:00",
		Location:     "Main Hall",
		EventType:    eventType,
		CreatorEmail: creator.Email,
		Status:       "active",
		JoinedUsers:  []models.Participant{},
		VoteOptions:  opts,
		Rev:          1,
		DateCreated:  now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("events").InsertOne(ctx, event); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return event
}

// nextEventSeq shares the counter the event store uses, so fixtures and
// store-created events never collide.
func (f *Fixtures) nextEventSeq(ctx context.Context) int64 {
	f.t.Helper()
	seq, err := counters.New(f.db).Next(ctx, "events")
	if err != nil {
		f.t.Fatalf("failed to mint event id: %v", err)
	}
	return seq
}
