// Package revision implements optimistic concurrency for read-modify-write
// updates. Every stored document carries a rev field; a replace only lands
// when the stored rev still equals the one the writer read.
package revision

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrConflict is returned when the stored revision no longer matches.
var ErrConflict = errors.New("document was modified concurrently")

// Replace overwrites the document with _id == id and rev == expected with doc.
// A missing document and a stale revision both yield ErrConflict.
func Replace(ctx context.Context, c *mongo.Collection, id any, expected int64, doc any) error {
	res, err := c.ReplaceOne(ctx, bson.M{"_id": id, "rev": expected}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
