// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called from EnsureSchema. Each ensure* function is idempotent.
Problems are aggregated so every failing collection is reported at once.
Stores with their own lifecycle (otp_codes, audit_events) ensure their
indexes themselves.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, coll := range []string{"users", "admins"} {
		if err := ensureAccounts(ctx, db.Collection(coll)); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}
	if err := ensurePosts(ctx, db); err != nil {
		problems = append(problems, "posts: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureAccounts(ctx context.Context, c *mongo.Collection) error {
	name := c.Name()
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_" + name + "_email").SetUnique(true),
		},
		{
			// directory search: prefix match on folded username
			Keys:    bson.D{{Key: "username_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_usernameci__id"),
		},
		{
			// cascade $pull when a post is deleted
			Keys:    bson.D{{Key: "saved_posts", Value: 1}},
			Options: options.Index().SetName("idx_" + name + "_saved_posts"),
		},
	})
}

func ensurePosts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("posts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_status_created"),
		},
		{
			Keys:    bson.D{{Key: "author_email", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_author_status_created"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "flag_count", Value: -1}},
			Options: options.Index().SetName("idx_posts_status_flagcount"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "event_type", Value: 1}, {Key: "date_created", Value: -1}},
			Options: options.Index().SetName("idx_events_status_type_created"),
		},
		{
			Keys:    bson.D{{Key: "creator_email", Value: 1}, {Key: "status", Value: 1}, {Key: "date_created", Value: -1}},
			Options: options.Index().SetName("idx_events_creator_status_created"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return boolVal(a) == boolVal(b)
}

func boolVal(p *bool) bool {
	return p != nil && *p
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo returns IndexOptionsConflict when the same keys already exist under
// another name or with other options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// recreate drops the index called oldName and creates m in its place.
func recreate(ctx context.Context, coll *mongo.Collection, oldName string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
		return fmt.Errorf("drop %s: %w", oldName, err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
		return err
	}
	return nil
}

func describeCreateErr(coll *mongo.Collection, name, sig string, unique bool, err error) string {
	if isDuplicateKeyErr(err) && unique {
		helper := ""
		if strings.Contains(sig, "email:1") {
			helper = fmt.Sprintf(" (duplicates exist on %s.email; find them with "+
				`db.%s.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }]))`,
				coll.Name(), coll.Name())
		}
		return fmt.Sprintf("%s(%s): cannot create unique index%s", coll.Name(), name, helper)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		desiredSig := keySig(m.Keys.(bson.D))
		unique := boolVal(desiredUnique)
		start := time.Now()

		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", unique),
		}

		ex, ok := listIndexes(ctx, coll)[desiredSig]
		switch {
		case ok && sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName):
			zap.L().Debug("reusing existing index", fields...)
			continue

		case ok:
			// same keys, different name or uniqueness
			if err := recreate(ctx, coll, ex.Name, m); err != nil {
				zap.L().Warn("index recreate failed", append(fields, zap.Error(err))...)
				errs = append(errs, describeCreateErr(coll, desiredName, desiredSig, unique, err))
				continue
			}
			zap.L().Info("index recreated",
				append(fields, zap.String("from", ex.Name), zap.Duration("took", time.Since(start)))...)
			continue
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil && isOptionsConflictErr(err) {
			// a concurrent creator won the race; reconcile against what is there now
			if match, found := listIndexes(ctx, coll)[desiredSig]; found {
				if sameBoolPtr(desiredUnique, match.Unique) {
					continue
				}
				err = recreate(ctx, coll, match.Name, m)
			}
		}
		if err != nil {
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, describeCreateErr(coll, desiredName, desiredSig, unique, err))
			continue
		}
		zap.L().Info("index ensured",
			append(fields, zap.String("created_name", created), zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
