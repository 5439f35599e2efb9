package data

import (
	"context"

	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// PairingsStore keeps the pairing history. Records are keyed by PairKey.
type PairingsStore struct {
	coll *mongo.Collection
}

// NewPairingsStore returns a PairingsStore using the provided collection.
func NewPairingsStore(coll *mongo.Collection) *PairingsStore {
	return &PairingsStore{coll: coll}
}

// InsertIntent writes an uncommitted record. ErrDuplicate means a record for the
// pair already exists; the caller decides whether it can be resumed.
func (s *PairingsStore) InsertIntent(ctx context.Context, rec *PairingRecord) error {
	rec.Committed = false
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert pairing intent")
	}
	return nil
}

// Get returns the record for the given pair key.
func (s *PairingsStore) Get(ctx context.Context, key string) (*PairingRecord, error) {
	var rec PairingRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find pairing")
	}
	return &rec, nil
}

// MarkCommitted flags the record as the completed pairing.
func (s *PairingsStore) MarkCommitted(ctx context.Context, key string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, bson.M{"$set": bson.M{"committed": true}})
	if err != nil {
		return errors.Wrap(err, "commit pairing")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteIntent removes an uncommitted record. Committed history is never deleted.
func (s *PairingsStore) DeleteIntent(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key, "committed": false}); err != nil {
		return errors.Wrap(err, "delete pairing intent")
	}
	return nil
}

// HasHistorical reports whether the two identities share a historical pairing.
func (s *PairingsStore) HasHistorical(ctx context.Context, a, b string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": PairKey(a, b), "historical": true})
	if err != nil {
		return false, errors.Wrap(err, "count historical pairings")
	}
	return n > 0, nil
}

// ListUncommitted returns pairing intents left behind by interrupted attempts.
func (s *PairingsStore) ListUncommitted(ctx context.Context) ([]*PairingRecord, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"committed": false, "historical": false})
	if err != nil {
		return nil, errors.Wrap(err, "find pairing intents")
	}
	defer cursor.Close(ctx)

	var recs []*PairingRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, errors.Wrap(err, "decode pairing intents")
	}
	return recs, nil
}
