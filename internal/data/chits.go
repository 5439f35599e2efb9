package data

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChitsStore provides chit database operations.
type ChitsStore struct {
	coll *mongo.Collection
}

// NewChitsStore returns a ChitsStore using given collection.
func NewChitsStore(coll *mongo.Collection) *ChitsStore {
	return &ChitsStore{coll: coll}
}

// Insert appends a chit.
func (s *ChitsStore) Insert(ctx context.Context, c *Chit) error {
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return errors.Wrap(err, "insert chit")
	}
	return nil
}

// Get loads one chit, scoped to its chest.
func (s *ChitsStore) Get(ctx context.Context, chestID, chitID string) (*Chit, error) {
	var c Chit
	if err := s.coll.FindOne(ctx, bson.M{"_id": chitID, "chest_id": chestID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find chit")
	}
	return &c, nil
}

// ListByAuthor returns the chits one author wrote into a chest, oldest first.
func (s *ChitsStore) ListByAuthor(ctx context.Context, chestID, authorID string) ([]*Chit, error) {
	return s.find(ctx, bson.M{"chest_id": chestID, "author_id": authorID})
}

// ListByChest returns every chit of a chest, oldest first.
func (s *ChitsStore) ListByChest(ctx context.Context, chestID string) ([]*Chit, error) {
	return s.find(ctx, bson.M{"chest_id": chestID})
}

func (s *ChitsStore) find(ctx context.Context, filter bson.M) ([]*Chit, error) {
	// _id breaks ties between chits created in the same millisecond
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find chits")
	}
	defer cursor.Close(ctx)

	chits := []*Chit{}
	if err := cursor.All(ctx, &chits); err != nil {
		return nil, errors.Wrap(err, "decode chits")
	}
	return chits, nil
}

// MarkRead flips is_read from false to true in one conditional update. It reports
// whether this call performed the flip, so callers can count each chit once.
func (s *ChitsStore) MarkRead(ctx context.Context, chestID, chitID, readerID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": chitID, "chest_id": chestID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": at, "read_by": readerID}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "mark chit read")
	}
	return res.ModifiedCount == 1, nil
}

// CountUnread returns the number of unread chits in a chest.
func (s *ChitsStore) CountUnread(ctx context.Context, chestID string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"chest_id": chestID, "is_read": false})
	if err != nil {
		return 0, errors.Wrap(err, "count unread chits")
	}
	return n, nil
}
