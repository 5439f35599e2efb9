package data

import (
	"context"

	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CountersStore keeps per-chest statistics. Every change is a single $inc on the
// chest's counter document, so concurrent writers never lose updates.
type CountersStore struct {
	coll *mongo.Collection
}

// NewCountersStore returns a CountersStore using the given collection.
func NewCountersStore(coll *mongo.Collection) *CountersStore {
	return &CountersStore{coll: coll}
}

// Init creates the zeroed counter document for a chest if it is missing.
func (s *CountersStore) Init(ctx context.Context, chestID string) error {
	update := bson.M{"$setOnInsert": bson.M{"chit_count": 0, "read_count": 0}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": chestID}, update, options.UpdateOne().SetUpsert(true))
	return errors.Wrap(err, "init chest counters")
}

// IncChits counts one more chit written by authorID.
func (s *CountersStore) IncChits(ctx context.Context, chestID, authorID string) error {
	return s.inc(ctx, chestID, "chit_count", "chit_count_by_author."+authorID)
}

// IncReads counts one more chit read by readerID.
func (s *CountersStore) IncReads(ctx context.Context, chestID, readerID string) error {
	return s.inc(ctx, chestID, "read_count", "read_count_by_reader."+readerID)
}

func (s *CountersStore) inc(ctx context.Context, chestID, total, perID string) error {
	update := bson.M{"$inc": bson.M{total: 1, perID: 1}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": chestID}, update, options.UpdateOne().SetUpsert(true))
	return errors.Wrapf(err, "increment %s", total)
}

// Get returns the counters of a chest, zeroed when none were recorded yet.
func (s *CountersStore) Get(ctx context.Context, chestID string) (*ChestCounters, error) {
	var c ChestCounters
	if err := s.coll.FindOne(ctx, bson.M{"_id": chestID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &ChestCounters{ChestID: chestID}, nil
		}
		return nil, errors.Wrap(err, "find chest counters")
	}
	return &c, nil
}
