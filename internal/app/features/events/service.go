package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/campushub/internal/app/policy/eventpolicy"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/status"
	"github.com/dalemusser/campushub/internal/app/system/txn"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service runs the event workflows. Writes that touch an event and an
// account together go through txn.Run.
type Service struct {
	Client *mongo.Client
	Events *eventstore.Store
	Dir    *userstore.Directory
	Log    *zap.Logger

	// beforeAccountWrite, when set, runs ahead of the account step of
	// join and vote.
	beforeAccountWrite func(ctx context.Context, email string)
}

// NewService wires a Service to db.
func NewService(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		Client: db.Client(),
		Events: eventstore.New(db),
		Dir:    userstore.NewDirectory(db),
		Log:    logger,
	}
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

func (s *Service) activeEvent(ctx context.Context, id string) (*models.Event, error) {
	e, err := s.Events.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return nil, apierr.NotFound("Event not found")
		}
		return nil, err
	}
	return e, nil
}

// writeErr maps a failed write to the error the caller sees.
func writeErr(op string, err error) error {
	if errors.Is(err, revision.ErrConflict) {
		return apierr.Conflict(err)
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create inserts a new event for creatorEmail.
func (s *Service) Create(ctx context.Context, in eventpolicy.EventInput, eventType, creatorEmail string) (models.Event, error) {
	e, err := eventpolicy.CheckCreate(in, eventType)
	if err != nil {
		return models.Event{}, err
	}
	e.CreatorEmail = creatorEmail
	created, err := s.Events.Create(ctx, e)
	if err != nil {
		return models.Event{}, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// Upload creates an event on behalf of a moderator and records it in the
// moderator's own event list. The role is read from the store.
func (s *Service) Upload(ctx context.Context, in eventpolicy.EventInput, email string) (models.Event, error) {
	u, users, err := s.Dir.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.Event{}, apierr.NotFound("Moderator not found")
		}
		return models.Event{}, err
	}
	if !strings.EqualFold(u.Role, models.RoleModerator) {
		return models.Event{}, apierr.Forbidden("Unauthorized: Not a Moderator")
	}

	draft, err := eventpolicy.CheckCreate(in, "")
	if err != nil {
		return models.Event{}, err
	}
	draft.CreatorEmail = u.Email
	prior := cloneUser(*u)

	var created models.Event
	var next models.User
	err = txn.Run(ctx, s.Client, s.Log,
		txn.Step{
			Name: "insert event",
			Apply: func(ctx context.Context) error {
				var err error
				created, err = s.Events.Create(ctx, draft)
				return err
			},
			Revert: func(ctx context.Context) error {
				gone := created
				gone.Status = status.Deleted
				return s.Events.Replace(ctx, &gone)
			},
		},
		txn.Step{
			Name: "record moderator event",
			Apply: func(ctx context.Context) error {
				next = cloneUser(prior)
				next.MyEvents = append(next.MyEvents, created.ID)
				return users.Replace(ctx, &next)
			},
		},
	)
	if err != nil {
		return models.Event{}, writeErr("upload event", err)
	}
	return created, nil
}

// Join adds the account for email to a normal event.
func (s *Service) Join(ctx context.Context, email, eventID string) (models.Event, error) {
	e, err := s.activeEvent(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	u, users, err := s.account(ctx, email)
	if err != nil {
		return models.Event{}, err
	}
	if err := checkJoin(e, u); err != nil {
		return models.Event{}, err
	}

	priorEvent, priorUser := cloneEvent(*e), cloneUser(*u)
	var nextEvent models.Event
	var nextUser models.User

	err = txn.Run(ctx, s.Client, s.Log,
		txn.Step{
			Name: "add participant",
			Apply: func(ctx context.Context) error {
				nextEvent = cloneEvent(priorEvent)
				addParticipant(&nextEvent, priorUser)
				return s.Events.Replace(ctx, &nextEvent)
			},
			Revert: func(ctx context.Context) error {
				return s.Events.Restore(ctx, priorEvent, nextEvent.Rev)
			},
		},
		txn.Step{
			Name: "record joined event",
			Apply: func(ctx context.Context) error {
				if s.beforeAccountWrite != nil {
					s.beforeAccountWrite(ctx, priorUser.Email)
				}
				nextUser = cloneUser(priorUser)
				addJoinedRef(&nextUser, priorEvent)
				return users.Replace(ctx, &nextUser)
			},
			Revert: func(ctx context.Context) error {
				return users.Restore(ctx, priorUser, nextUser.Rev)
			},
		},
	)
	if err != nil {
		return models.Event{}, writeErr("join event", err)
	}
	return nextEvent, nil
}

// Vote records a single vote by email on option of a voting event.
func (s *Service) Vote(ctx context.Context, email, eventID, option string) (models.Event, error) {
	e, err := s.Events.GetActive(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return models.Event{}, apierr.NotFound("Voting event not found")
		}
		return models.Event{}, err
	}
	u, users, err := s.account(ctx, email)
	if err != nil {
		return models.Event{}, err
	}
	idx, err := checkVote(e, u, option)
	if err != nil {
		return models.Event{}, err
	}
	chosen := e.VoteOptions[idx].Name

	priorEvent, priorUser := cloneEvent(*e), cloneUser(*u)
	var nextEvent models.Event
	var nextUser models.User

	err = txn.Run(ctx, s.Client, s.Log,
		txn.Step{
			Name: "count vote",
			Apply: func(ctx context.Context) error {
				nextEvent = cloneEvent(priorEvent)
				addVote(&nextEvent, idx, priorUser.Email)
				return s.Events.Replace(ctx, &nextEvent)
			},
			Revert: func(ctx context.Context) error {
				return s.Events.Restore(ctx, priorEvent, nextEvent.Rev)
			},
		},
		txn.Step{
			Name: "record vote",
			Apply: func(ctx context.Context) error {
				if s.beforeAccountWrite != nil {
					s.beforeAccountWrite(ctx, priorUser.Email)
				}
				nextUser = cloneUser(priorUser)
				addVoteRecord(&nextUser, priorEvent.ID, chosen)
				return users.Replace(ctx, &nextUser)
			},
			Revert: func(ctx context.Context) error {
				return users.Restore(ctx, priorUser, nextUser.Rev)
			},
		},
	)
	if err != nil {
		return models.Event{}, writeErr("vote", err)
	}
	return nextEvent, nil
}

// Update merges patch onto an active event.
func (s *Service) Update(ctx context.Context, eventID string, patch eventpolicy.EventPatch) (models.Event, error) {
	e, err := s.activeEvent(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}
	if err := eventpolicy.ApplyPatch(e, patch); err != nil {
		return models.Event{}, err
	}
	if err := s.Events.Replace(ctx, e); err != nil {
		return models.Event{}, writeErr("update event", err)
	}
	return *e, nil
}

// Delete soft-deletes an event. The requester's role is read from the
// store rather than trusted from the token.
func (s *Service) Delete(ctx context.Context, requesterEmail, eventID string) error {
	u, _, err := s.account(ctx, requesterEmail)
	if err != nil {
		return err
	}
	if !eventpolicy.CanManage(u.Role) {
		return apierr.Forbidden("Only moderators and admins can delete events")
	}
	e, err := s.activeEvent(ctx, eventID)
	if err != nil {
		return err
	}
	e.Status = status.Deleted
	if err := s.Events.Replace(ctx, e); err != nil {
		return writeErr("delete event", err)
	}
	return nil
}

// ListAll returns active normal and voting events merged, newest first.
// The two types are fetched concurrently.
func (s *Service) ListAll(ctx context.Context) ([]models.Event, error) {
	var normal, voting []models.Event
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		normal, err = s.Events.ListActive(gctx, eventstore.ListFilter{EventType: models.EventTypeNormal})
		return err
	})
	g.Go(func() error {
		var err error
		voting, err = s.Events.ListActive(gctx, eventstore.ListFilter{EventType: models.EventTypeVoting})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	all := append(normal, voting...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].DateCreated.After(all[j].DateCreated)
	})
	return all, nil
}

// ListScoped returns what role may see in the management listing.
func (s *Service) ListScoped(ctx context.Context, role, email string) ([]models.Event, error) {
	scope := eventpolicy.ScopeFor(role, email)
	if !scope.CanList {
		return nil, apierr.Forbidden("Only moderators and admins can list managed events")
	}
	return s.Events.ListActive(ctx, eventstore.ListFilter{CreatorEmail: scope.CreatorEmail})
}

// ListCreatedBy returns the active events email created.
func (s *Service) ListCreatedBy(ctx context.Context, email string) ([]models.Event, error) {
	return s.Events.ListActive(ctx, eventstore.ListFilter{CreatorEmail: email})
}

// JoinedDetails resolves the caller's joined events to the active events
// behind them. References to deleted events are skipped.
func (s *Service) JoinedDetails(ctx context.Context, email string) ([]models.Event, error) {
	u, _, err := s.account(ctx, email)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(u.JoinedEvents))
	for _, je := range u.JoinedEvents {
		ids = append(ids, je.EventID)
	}
	byID, err := s.Events.ListActiveByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load joined events: %w", err)
	}
	out := make([]models.Event, 0, len(byID))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// Participation returns the caller's account for the user-events routes.
func (s *Service) Participation(ctx context.Context, email string) (*models.User, error) {
	u, _, err := s.account(ctx, email)
	return u, err
}

// PersonView is the read view of a referenced account.
type PersonView struct {
	Username  string `json:"username"`
	UserID    string `json:"userId"` // email
	StudentID string `json:"studentId"`
}

// resolvePeople looks up each email once. Emails that no longer resolve
// to an account are left out of the result map.
func (s *Service) resolvePeople(ctx context.Context, emails []string) (map[string]PersonView, error) {
	out := make(map[string]PersonView, len(emails))
	for _, email := range emails {
		if _, done := out[email]; done {
			continue
		}
		u, _, err := s.Dir.Lookup(ctx, email)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				s.Log.Debug("skipping dangling account reference", zap.String("email", email))
				continue
			}
			return nil, err
		}
		out[email] = PersonView{Username: u.Username, UserID: u.Email, StudentID: u.StudentID}
	}
	return out, nil
}

// JoinedUsers lists the participants of an active normal event.
func (s *Service) JoinedUsers(ctx context.Context, eventID string) ([]PersonView, error) {
	e, err := s.activeEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.IsVoting() {
		return nil, apierr.Validation("Invalid event type")
	}
	emails := make([]string, 0, len(e.JoinedUsers))
	for _, p := range e.JoinedUsers {
		emails = append(emails, p.Email)
	}
	people, err := s.resolvePeople(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve participants: %w", err)
	}
	out := make([]PersonView, 0, len(emails))
	for _, email := range emails {
		if p, ok := people[email]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// OptionResult is the tally of one vote option.
type OptionResult struct {
	Option string       `json:"option"`
	Votes  int          `json:"votes"`
	Voters []PersonView `json:"voters"`
}

// VotingResults tallies an active voting event.
func (s *Service) VotingResults(ctx context.Context, eventID string) ([]OptionResult, error) {
	e, err := s.VotingEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var emails []string
	for _, o := range e.VoteOptions {
		emails = append(emails, o.VotedUsers...)
	}
	people, err := s.resolvePeople(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("resolve voters: %w", err)
	}

	out := make([]OptionResult, 0, len(e.VoteOptions))
	for _, o := range e.VoteOptions {
		r := OptionResult{Option: o.Name, Votes: o.Votes, Voters: []PersonView{}}
		for _, email := range o.VotedUsers {
			if p, ok := people[email]; ok {
				r.Voters = append(r.Voters, p)
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// VotingEvent loads an active voting event.
func (s *Service) VotingEvent(ctx context.Context, eventID string) (*models.Event, error) {
	e, err := s.Events.GetActive(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return nil, apierr.NotFound("Voting event not found")
		}
		return nil, err
	}
	if !e.IsVoting() {
		return nil, apierr.NotFound("Voting event not found")
	}
	return e, nil
}
