package data

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ChestsStore provides chest database operations.
type ChestsStore struct {
	coll *mongo.Collection
}

// NewChestsStore returns a ChestsStore using the given collection.
func NewChestsStore(coll *mongo.Collection) *ChestsStore {
	return &ChestsStore{coll: coll}
}

// Insert stores a new chest. A second live chest for the same pair violates the
// unique live_key index and comes back as ErrDuplicate.
func (s *ChestsStore) Insert(ctx context.Context, c *Chest) error {
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Wrap(err, "insert chest")
	}
	return nil
}

// GetByID loads a chest by id.
func (s *ChestsStore) GetByID(ctx context.Context, id string) (*Chest, error) {
	var c Chest
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find chest")
	}
	return &c, nil
}

// FindLive returns the live chest (active, unlockable or opened) for a pair.
func (s *ChestsStore) FindLive(ctx context.Context, pairKey string) (*Chest, error) {
	var c Chest
	if err := s.coll.FindOne(ctx, bson.M{"live_key": pairKey}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find live chest")
	}
	return &c, nil
}

// ExistsWithStatus reports whether the pair has a chest in any of the given statuses.
func (s *ChestsStore) ExistsWithStatus(ctx context.Context, pairKey string, statuses ...ChestStatus) (bool, error) {
	filter := bson.M{"pair_key": pairKey, "status": bson.M{"$in": statuses}}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count chests")
	}
	return n > 0, nil
}

// UpdateStatus moves a chest from one status to the next as a compare-and-swap on
// the current status. It reports false when the chest was no longer in from.
func (s *ChestsStore) UpdateStatus(ctx context.Context, id string, from, to ChestStatus, at time.Time) (bool, error) {
	set := bson.M{"status": to, "updated_at": at}
	update := bson.M{"$set": set}
	switch to {
	case StatusOpened:
		set["opened_at"] = at
	case StatusCompleted:
		set["completed_at"] = at
		// completion frees the pair for a new chest
		update["$unset"] = bson.M{"live_key": ""}
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return false, errors.Wrap(err, "update chest status")
	}
	return res.MatchedCount == 1, nil
}

// ListByOwner returns every chest the identity belongs to, newest first.
func (s *ChestsStore) ListByOwner(ctx context.Context, ownerID string) ([]*Chest, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"owner_a": ownerID},
		bson.M{"owner_b": ownerID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find chests by owner")
	}
	defer cursor.Close(ctx)

	var chests []*Chest
	if err := cursor.All(ctx, &chests); err != nil {
		return nil, errors.Wrap(err, "decode chests")
	}
	return chests, nil
}

// ListDue returns active chests whose unlock deadline is at or before now.
func (s *ChestsStore) ListDue(ctx context.Context, now time.Time, limit int64) ([]*Chest, error) {
	filter := bson.M{"status": StatusActive, "unlock_at": bson.M{"$lte": now}}
	opts := options.Find().
		SetSort(bson.D{{Key: "unlock_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find due chests")
	}
	defer cursor.Close(ctx)

	var chests []*Chest
	if err := cursor.All(ctx, &chests); err != nil {
		return nil, errors.Wrap(err, "decode due chests")
	}
	return chests, nil
}
