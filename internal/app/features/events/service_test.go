package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/events"
	"github.com/dalemusser/campushub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/status"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*events.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return events.NewService(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestService_Join(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	e := fx.CreateEvent(ctx, "Orientation", mod)

	joined, err := svc.Join(ctx, alice.Email, e.ID)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if joined.TotalJoined != 1 || len(joined.JoinedUsers) != 1 {
		t.Fatalf("totalJoined = %d, joinedUsers = %d, want 1/1", joined.TotalJoined, len(joined.JoinedUsers))
	}

	_, err = svc.Join(ctx, alice.Email, e.ID)
	if !apierr.IsKind(err, apierr.KindDuplicate) {
		t.Fatalf("second Join err = %v, want Duplicate", err)
	}

	stored, err := svc.Events.GetActive(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	if stored.TotalJoined != 1 {
		t.Errorf("stored totalJoined = %d, want 1", stored.TotalJoined)
	}
	u, _, err := svc.Dir.Lookup(ctx, alice.Email)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !u.HasJoined(e.ID) {
		t.Error("expected joinedEvents to hold the event")
	}
}

func TestService_JoinErrors(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	normal := fx.CreateEvent(ctx, "Gone", mod)
	voting := fx.CreateVotingEvent(ctx, "Election", mod, "A", "B")

	if err := svc.Delete(ctx, mod.Email, normal.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	tests := []struct {
		name    string
		email   string
		eventID string
		kind    apierr.Kind
	}{
		{"deleted event", alice.Email, normal.ID, apierr.KindNotFound},
		{"missing event", alice.Email, "event-999", apierr.KindNotFound},
		{"unknown user", "ghost@imail.sunway.edu.my", voting.ID, apierr.KindNotFound},
		{"voting event", alice.Email, voting.ID, apierr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Join(ctx, tt.email, tt.eventID)
			if !apierr.IsKind(err, tt.kind) {
				t.Errorf("Join err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestService_Vote(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	e := fx.CreateVotingEvent(ctx, "Election", mod, "A", "B")

	voted, err := svc.Vote(ctx, alice.Email, e.ID, "A")
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if voted.VoteOptions[0].Votes != 1 || voted.VoteOptions[1].Votes != 0 {
		t.Fatalf("votes = %d/%d, want 1/0", voted.VoteOptions[0].Votes, voted.VoteOptions[1].Votes)
	}

	for _, opt := range []string{"A", "B"} {
		if _, err := svc.Vote(ctx, alice.Email, e.ID, opt); !apierr.IsKind(err, apierr.KindDuplicate) {
			t.Errorf("repeat vote for %s err = %v, want Duplicate", opt, err)
		}
	}

	bob := fx.CreateUser(ctx, "Bob", "bob@imail.sunway.edu.my", models.RoleUser)
	if _, err := svc.Vote(ctx, bob.Email, e.ID, "C"); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("unknown option err = %v, want NotFound", err)
	}
	normal := fx.CreateEvent(ctx, "Talk", mod)
	if _, err := svc.Vote(ctx, bob.Email, normal.ID, "A"); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("normal event err = %v, want NotFound", err)
	}

	results, err := svc.VotingResults(ctx, e.ID)
	if err != nil {
		t.Fatalf("VotingResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Votes != 1 || len(results[0].Voters) != 1 || results[0].Voters[0].UserID != alice.Email {
		t.Errorf("option A result = %+v", results[0])
	}
	if results[1].Votes != 0 || len(results[1].Voters) != 0 {
		t.Errorf("option B result = %+v", results[1])
	}
}

func TestService_StaleRevisionConflicts(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	e := fx.CreateEvent(ctx, "Talk", mod)

	stale, err := svc.Events.GetActive(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetActive failed: %v", err)
	}
	title := "Renamed"
	if _, err := svc.Update(ctx, e.ID, eventpolicy.EventPatch{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stale.Title = "Lost update"
	if err := svc.Events.Replace(ctx, stale); !errors.Is(err, revision.ErrConflict) {
		t.Fatalf("stale Replace err = %v, want ErrConflict", err)
	}
}

func TestService_JoinedUsersSkipsMissingAccounts(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	bob := fx.CreateUser(ctx, "Bob", "bob@imail.sunway.edu.my", models.RoleUser)
	e := fx.CreateEvent(ctx, "Orientation", mod)

	for _, u := range []models.User{alice, bob} {
		if _, err := svc.Join(ctx, u.Email, e.ID); err != nil {
			t.Fatalf("Join(%s) failed: %v", u.Email, err)
		}
	}
	if _, err := fx.DB().Collection("users").DeleteOne(ctx, bson.M{"email": bob.Email}); err != nil {
		t.Fatalf("DeleteOne failed: %v", err)
	}

	people, err := svc.JoinedUsers(ctx, e.ID)
	if err != nil {
		t.Fatalf("JoinedUsers failed: %v", err)
	}
	if len(people) != 1 || people[0].UserID != alice.Email || people[0].Username != "Alice" {
		t.Errorf("people = %+v, want only Alice", people)
	}
}

func TestService_DeleteRequiresStoredRole(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	admin := fx.CreateAdmin(ctx, "Admin", "admin@sunway.edu.my")
	e := fx.CreateEvent(ctx, "Talk", mod)

	if err := svc.Delete(ctx, alice.Email, e.ID); !apierr.IsKind(err, apierr.KindForbidden) {
		t.Fatalf("user Delete err = %v, want Forbidden", err)
	}
	if err := svc.Delete(ctx, admin.Email, e.ID); err != nil {
		t.Fatalf("admin Delete failed: %v", err)
	}

	stored, err := svc.Events.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != status.Deleted {
		t.Errorf("status = %q, want deleted", stored.Status)
	}
	if err := svc.Delete(ctx, admin.Email, e.ID); !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("second Delete err = %v, want NotFound", err)
	}
}

func TestService_ListAllExcludesDeleted(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	keep := fx.CreateEvent(ctx, "Keep", mod)
	vote := fx.CreateVotingEvent(ctx, "Vote", mod, "A", "B")
	drop := fx.CreateEvent(ctx, "Drop", mod)
	if err := svc.Delete(ctx, mod.Email, drop.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	ids := map[string]bool{}
	for _, e := range all {
		ids[e.ID] = true
	}
	if len(all) != 2 || !ids[keep.ID] || !ids[vote.ID] {
		t.Errorf("ListAll ids = %v, want %s and %s", ids, keep.ID, vote.ID)
	}
	for i := 1; i < len(all); i++ {
		if all[i].DateCreated.After(all[i-1].DateCreated) {
			t.Error("expected newest first")
		}
	}
}

func TestService_ListScoped(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	other := fx.CreateModerator(ctx, "Other", "other@imail.sunway.edu.my")
	fx.CreateEvent(ctx, "Mine", mod)
	fx.CreateEvent(ctx, "Theirs", other)

	tests := []struct {
		name    string
		role    string
		email   string
		want    int
		wantErr bool
	}{
		{"admin sees all", models.RoleAdmin, "admin@sunway.edu.my", 2, false},
		{"moderator sees own", models.RoleModerator, mod.Email, 1, false},
		{"user forbidden", models.RoleUser, "alice@imail.sunway.edu.my", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := svc.ListScoped(ctx, tt.role, tt.email)
			if tt.wantErr {
				if !apierr.IsKind(err, apierr.KindForbidden) {
					t.Errorf("err = %v, want Forbidden", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListScoped failed: %v", err)
			}
			if len(list) != tt.want {
				t.Errorf("len = %d, want %d", len(list), tt.want)
			}
		})
	}
}

func TestService_Upload(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	in := eventpolicy.EventInput{
		Title: "Fair", Description: "Club fair", Date: "2026-11-02", Time: "09:00", Location: "Atrium",
	}

	e, err := svc.Upload(ctx, in, mod.Email)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	u, _, err := svc.Dir.Lookup(ctx, mod.Email)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(u.MyEvents) != 1 || u.MyEvents[0] != e.ID {
		t.Errorf("myEvents = %v, want [%s]", u.MyEvents, e.ID)
	}

	if _, err := svc.Upload(ctx, in, alice.Email); !apierr.IsKind(err, apierr.KindForbidden) {
		t.Errorf("user Upload err = %v, want Forbidden", err)
	}
	_, err = svc.Upload(ctx, in, "ghost@imail.sunway.edu.my")
	if e, ok := apierr.As(err); !ok || e.Message != "Moderator not found" {
		t.Errorf("unknown Upload err = %v, want Moderator not found", err)
	}
}

func TestService_UpdateKeepsTallies(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	e := fx.CreateVotingEvent(ctx, "Election", mod, "A", "B")
	if _, err := svc.Vote(ctx, alice.Email, e.ID, "A"); err != nil {
		t.Fatalf("Vote failed: %v", err)
	}

	opts := []eventpolicy.OptionInput{{Name: "A"}, {Name: "C"}}
	updated, err := svc.Update(ctx, e.ID, eventpolicy.EventPatch{VoteOptions: &opts})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated.VoteOptions) != 2 || updated.VoteOptions[0].Votes != 1 || updated.VoteOptions[1].Votes != 0 {
		t.Errorf("options = %+v, want A=1 C=0", updated.VoteOptions)
	}

	one := []eventpolicy.OptionInput{{Name: "A"}}
	if _, err := svc.Update(ctx, e.ID, eventpolicy.EventPatch{VoteOptions: &one}); !apierr.IsKind(err, apierr.KindValidation) {
		t.Errorf("single-option Update err = %v, want Validation", err)
	}
}

func TestService_JoinedDetailsSkipsDeleted(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
	a := fx.CreateEvent(ctx, "A", mod)
	b := fx.CreateEvent(ctx, "B", mod)
	for _, id := range []string{a.ID, b.ID} {
		if _, err := svc.Join(ctx, alice.Email, id); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
	}
	if err := svc.Delete(ctx, mod.Email, b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, err := svc.JoinedDetails(ctx, alice.Email)
	if err != nil {
		t.Fatalf("JoinedDetails failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("joined details = %v, want only %s", list, a.ID)
	}
}

func TestService_UnknownAccountIsNotFound(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := svc.Participation(ctx, "ghost@imail.sunway.edu.my")
	if !apierr.IsKind(err, apierr.KindNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
	if errors.Is(err, userstore.ErrNotFound) {
		t.Error("store sentinel should not leak past the service")
	}
}

func TestService_AccountConflictRestoresEvent(t *testing.T) {
	tests := []struct {
		name   string
		voting bool
		run    func(ctx context.Context, svc *events.Service, email, id string) error
	}{
		{"join", false, func(ctx context.Context, svc *events.Service, email, id string) error {
			_, err := svc.Join(ctx, email, id)
			return err
		}},
		{"vote", true, func(ctx context.Context, svc *events.Service, email, id string) error {
			_, err := svc.Vote(ctx, email, id, "A")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, fx := newService(t)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
			alice := fx.CreateUser(ctx, "Alice", "alice@imail.sunway.edu.my", models.RoleUser)
			var e models.Event
			if tt.voting {
				e = fx.CreateVotingEvent(ctx, "Election", mod, "A", "B")
			} else {
				e = fx.CreateEvent(ctx, "Orientation", mod)
			}

			// A concurrent profile edit lands after the account was read.
			bumped := false
			events.SetBeforeAccountWrite(svc, func(ctx context.Context, email string) {
				if bumped {
					return
				}
				bumped = true
				if _, err := fx.DB().Collection("users").UpdateOne(ctx,
					bson.M{"email": email}, bson.M{"$inc": bson.M{"rev": 1}}); err != nil {
					t.Errorf("bump rev failed: %v", err)
				}
			})

			err := tt.run(ctx, svc, alice.Email, e.ID)
			if !apierr.IsKind(err, apierr.KindConflict) {
				t.Fatalf("err = %v, want Conflict", err)
			}

			stored, err := svc.Events.GetActive(ctx, e.ID)
			if err != nil {
				t.Fatalf("GetActive failed: %v", err)
			}
			if stored.TotalJoined != 0 || len(stored.JoinedUsers) != 0 {
				t.Errorf("totalJoined = %d, joinedUsers = %d, want 0/0", stored.TotalJoined, len(stored.JoinedUsers))
			}
			for _, o := range stored.VoteOptions {
				if o.Votes != 0 || len(o.VotedUsers) != 0 {
					t.Errorf("option %s = %d votes %v, want untouched", o.Name, o.Votes, o.VotedUsers)
				}
			}

			u, _, err := svc.Dir.Lookup(ctx, alice.Email)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if u.HasJoined(e.ID) || u.HasVoted(e.ID) {
				t.Error("account should not record the failed workflow")
			}
		})
	}
}

func TestService_JoinedUsersRejectsVotingEvent(t *testing.T) {
	svc, fx := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mod := fx.CreateModerator(ctx, "Mod", "mod@imail.sunway.edu.my")
	e := fx.CreateVotingEvent(ctx, "Election", mod, "A", "B")

	_, err := svc.JoinedUsers(ctx, e.ID)
	if !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("err = %v, want Validation", err)
	}
	if ae, ok := apierr.As(err); !ok || ae.Message != "Invalid event type" {
		t.Errorf("message = %v, want Invalid event type", err)
	}
}
