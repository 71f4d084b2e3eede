package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/campushub/internal/app/policy/accountpolicy"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service backs the directory and role routes.
type Service struct {
	Dir *userstore.Directory
	Log *zap.Logger
}

func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{Dir: userstore.NewDirectory(db), Log: logger}
}

func writeErr(op string, err error) error {
	if errors.Is(err, revision.ErrConflict) {
		return apierr.Conflict(err)
	}
	return fmt.Errorf("%s: %w", op, err)
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

// List returns student accounts, optionally narrowed by a username or
// email prefix.
func (s *Service) List(ctx context.Context, q string) ([]models.User, error) {
	list, err := s.Dir.Users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

// Update is the body of PUT /api/users/{id}: the whitelisted profile
// fields plus savedPosts, which is kept as raw JSON so a non-array value
// can be coerced to an empty list.
type Update struct {
	accountpolicy.ProfilePatch
	SavedPosts json.RawMessage `json:"savedPosts"`
}

// savedPosts interprets the raw savedPosts value. ok is false when the
// field was absent.
func (u Update) savedPosts() (ids []string, ok bool) {
	raw := strings.TrimSpace(string(u.SavedPosts))
	if raw == "" {
		return nil, false
	}
	if err := json.Unmarshal(u.SavedPosts, &ids); err != nil || ids == nil {
		return []string{}, true
	}
	return ids, true
}

// UpdateProfile merges in onto the account for email and returns the
// stored result along with the names of the fields it touched.
func (s *Service) UpdateProfile(ctx context.Context, email string, in Update) (*models.User, []string, error) {
	if err := accountpolicy.CheckProfile(&in.ProfilePatch); err != nil {
		return nil, nil, err
	}
	u, store, err := s.account(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	var fields []string
	set := func(name string, dst *string, v *string, clean func(string) string) {
		if v == nil {
			return
		}
		*dst = clean(*v)
		fields = append(fields, name)
	}
	p := in.ProfilePatch
	set("username", &u.Username, p.Username, normalize.Name)
	set("studentId", &u.StudentID, p.StudentID, strings.TrimSpace)
	set("dob", &u.DOB, p.DOB, strings.TrimSpace)
	set("gender", &u.Gender, p.Gender, strings.TrimSpace)
	set("nationality", &u.Nationality, p.Nationality, strings.TrimSpace)
	set("program", &u.Program, p.Program, strings.TrimSpace)
	set("intake", &u.Intake, p.Intake, strings.TrimSpace)
	if ids, ok := in.savedPosts(); ok {
		u.SavedPosts = ids
		fields = append(fields, "savedPosts")
	}

	if err := store.Replace(ctx, u); err != nil {
		return nil, nil, writeErr("update user", err)
	}
	return u, fields, nil
}

// ChangeRole assigns a new role to a student account and returns the
// previous role. Administrator accounts are not reassigned here.
func (s *Service) ChangeRole(ctx context.Context, email string, in accountpolicy.RoleChange) (from, to string, err error) {
	to, err = accountpolicy.CheckRoleChange(in)
	if err != nil {
		return "", "", err
	}
	u, err := s.Dir.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return "", "", apierr.NotFound("User not found")
		}
		return "", "", err
	}
	from = u.Role
	u.Role = to
	if err := s.Dir.Users.Replace(ctx, u); err != nil {
		return "", "", writeErr("change role", err)
	}
	return from, to, nil
}
