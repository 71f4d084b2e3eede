package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Directory resolves an email across both account collections.
// Regular accounts take precedence over administrators.
type Directory struct {
	Users  *Store
	Admins *Store
}

func NewDirectory(db *mongo.Database) *Directory {
	return &Directory{Users: New(db), Admins: NewAdmins(db)}
}

// Lookup returns the account for email and the store that owns it.
func (d *Directory) Lookup(ctx context.Context, email string) (*models.User, *Store, error) {
	for _, s := range []*Store{d.Users, d.Admins} {
		u, err := s.GetByEmail(ctx, email)
		if err == nil {
			return u, s, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("%s lookup: %w", s.Name(), err)
		}
	}
	return nil, nil, ErrNotFound
}

// LookupID returns the account with id from either collection.
func (d *Directory) LookupID(ctx context.Context, id primitive.ObjectID) (*models.User, *Store, error) {
	for _, s := range []*Store{d.Users, d.Admins} {
		u, err := s.GetByID(ctx, id)
		if err == nil {
			return u, s, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("%s lookup: %w", s.Name(), err)
		}
	}
	return nil, nil, ErrNotFound
}

// Exists reports whether any account uses email.
func (d *Directory) Exists(ctx context.Context, email string) (bool, error) {
	for _, s := range []*Store{d.Users, d.Admins} {
		n, err := s.CountByEmail(ctx, email)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// PullSavedPost drops postID from the saved posts of every account in both
// collections, one update per collection.
func (d *Directory) PullSavedPost(ctx context.Context, postID string) (int64, error) {
	var total int64
	for _, s := range []*Store{d.Users, d.Admins} {
		n, err := s.PullSavedPost(ctx, postID)
		if err != nil {
			return total, fmt.Errorf("%s: %w", s.Name(), err)
		}
		total += n
	}
	return total, nil
}
