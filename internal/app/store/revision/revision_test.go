package revision_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/campushub/internal/app/store/revision"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

type doc struct {
	ID    string `bson:"_id"`
	Title string `bson:"title"`
	Rev   int64  `bson:"rev"`
}

func TestReplace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := db.Collection("docs")

	if _, err := c.InsertOne(ctx, doc{ID: "a", Title: "first", Rev: 1}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	if err := revision.Replace(ctx, c, "a", 1, doc{ID: "a", Title: "second", Rev: 2}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	// a writer still holding rev 1 loses
	err := revision.Replace(ctx, c, "a", 1, doc{ID: "a", Title: "stale", Rev: 2})
	if !errors.Is(err, revision.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var got doc
	if err := c.FindOne(ctx, bson.M{"_id": "a"}).Decode(&got); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got.Title != "second" || got.Rev != 2 {
		t.Errorf("got %+v, want title=second rev=2", got)
	}
}

func TestReplace_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := revision.Replace(ctx, db.Collection("docs"), "nope", 1, doc{ID: "nope", Rev: 2})
	if !errors.Is(err, revision.ErrConflict) {
		t.Errorf("expected ErrConflict for missing doc, got %v", err)
	}
}
