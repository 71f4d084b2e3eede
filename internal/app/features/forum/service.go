package forum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campushub/internal/app/policy/postpolicy"
	poststore "github.com/dalemusser/campushub/internal/app/store/posts"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/status"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service runs the forum workflows.
type Service struct {
	Posts *poststore.Store
	Dir   *userstore.Directory
	Log   *zap.Logger
}

func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		Posts: poststore.New(db),
		Dir:   userstore.NewDirectory(db),
		Log:   logger,
	}
}

func writeErr(op string, err error) error {
	if errors.Is(err, revision.ErrConflict) {
		return apierr.Conflict(err)
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Active loads an active post or reports NotFound.
func (s *Service) Active(ctx context.Context, id string) (*models.Post, error) {
	p, err := s.Posts.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, poststore.ErrNotFound) {
			return nil, apierr.NotFound("Post not found")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) account(ctx context.Context, email string) (*models.User, *userstore.Store, error) {
	u, store, err := s.Dir.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, nil, apierr.NotFound("User not found")
		}
		return nil, nil, err
	}
	return u, store, nil
}

// Create validates in and stores a new post by authorEmail.
func (s *Service) Create(ctx context.Context, in postpolicy.PostInput, authorEmail string) (models.Post, error) {
	p, err := postpolicy.CheckCreate(in, authorEmail)
	if err != nil {
		return models.Post{}, err
	}
	created, err := s.Posts.Create(ctx, p)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// List returns active posts, optionally only those by authorEmail.
func (s *Service) List(ctx context.Context, authorEmail string) ([]models.Post, error) {
	if authorEmail != "" {
		return s.Posts.ListByAuthor(ctx, authorEmail)
	}
	return s.Posts.ListActive(ctx)
}

// AddComment appends a comment to an active post.
func (s *Service) AddComment(ctx context.Context, postID string, in postpolicy.CommentInput) (models.Post, error) {
	c, err := postpolicy.CheckComment(in)
	if err != nil {
		return models.Post{}, err
	}
	p, err := s.Active(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	c.CreatedAt = time.Now()
	p.Comments = append(p.Comments, c)
	if err := s.Posts.Replace(ctx, p); err != nil {
		return models.Post{}, writeErr("add comment", err)
	}
	return *p, nil
}

// Edit merges patch onto p, which the caller has already authorized.
func (s *Service) Edit(ctx context.Context, p *models.Post, patch postpolicy.PostPatch) (models.Post, error) {
	if err := postpolicy.ApplyPatch(p, patch); err != nil {
		return models.Post{}, err
	}
	if err := s.Posts.Replace(ctx, p); err != nil {
		return models.Post{}, writeErr("edit post", err)
	}
	return *p, nil
}

// Flag records email's flag on an active post. Flags are never removed.
func (s *Service) Flag(ctx context.Context, postID, email string) (models.Post, error) {
	p, err := s.Active(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if p.IsFlaggedBy(email) {
		return models.Post{}, apierr.Duplicate("You have already flagged this post")
	}
	p.FlaggedBy = append(p.FlaggedBy, email)
	p.FlagVerified = true
	if err := s.Posts.Replace(ctx, p); err != nil {
		return models.Post{}, writeErr("flag post", err)
	}
	return *p, nil
}

// Delete soft-deletes p and pulls its ID from every saved-posts list.
// It returns how many accounts lost the bookmark.
func (s *Service) Delete(ctx context.Context, p *models.Post) (int64, error) {
	p.Status = status.Deleted
	if err := s.Posts.Replace(ctx, p); err != nil {
		return 0, writeErr("delete post", err)
	}
	n, err := s.Dir.PullSavedPost(ctx, p.ID)
	if err != nil {
		return n, fmt.Errorf("pull saved post: %w", err)
	}
	return n, nil
}

// Save bookmarks an active post for email.
func (s *Service) Save(ctx context.Context, email, postID string) error {
	if _, err := s.Active(ctx, postID); err != nil {
		return err
	}
	u, users, err := s.account(ctx, email)
	if err != nil {
		return err
	}
	if u.HasSaved(postID) {
		return apierr.Duplicate("Post already saved")
	}
	u.SavedPosts = append(u.SavedPosts, postID)
	if err := users.Replace(ctx, u); err != nil {
		return writeErr("save post", err)
	}
	return nil
}

// Saved resolves email's bookmarks to active posts. IDs that no longer
// resolve are skipped.
func (s *Service) Saved(ctx context.Context, email string) ([]models.Post, error) {
	u, _, err := s.account(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.Posts.FindActiveByIDs(ctx, u.SavedPosts)
}

// RemoveSaved drops postID from email's bookmarks.
func (s *Service) RemoveSaved(ctx context.Context, email, postID string) error {
	u, users, err := s.account(ctx, email)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(u.SavedPosts))
	for _, id := range u.SavedPosts {
		if id != postID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(u.SavedPosts) {
		return apierr.NotFound("Post not found in saved posts")
	}
	u.SavedPosts = kept
	if err := users.Replace(ctx, u); err != nil {
		return writeErr("remove saved post", err)
	}
	return nil
}
