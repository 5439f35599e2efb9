// Package data provides DB models and stores.
package data

import (
	"context"
	"time"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// IdentitiesStore performs identity DB operations.
type IdentitiesStore struct {
	// coll is the "identities" collection; username carries a unique index
	coll *mongo.Collection
}

// NewIdentitiesStore returns an IdentitiesStore using the provided collection.
func NewIdentitiesStore(coll *mongo.Collection) *IdentitiesStore {
	return &IdentitiesStore{coll: coll}
}

// Create inserts a new, unpaired identity document.
func (s *IdentitiesStore) Create(ctx context.Context, username, hashedPassword string, gender Gender) (*Identity, error) {
	ident := &Identity{
		ID:        uuid.NewString(),
		Username:  normalize.Username(username),
		Password:  hashedPassword,
		Gender:    gender,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.coll.InsertOne(ctx, ident); err != nil {
		// unique index on username turns a taken name into a duplicate key error
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, errors.Wrap(err, "insert identity")
	}
	return ident, nil
}

// GetByID finds an identity by id.
func (s *IdentitiesStore) GetByID(ctx context.Context, id string) (*Identity, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername finds an identity by its (normalized) username.
func (s *IdentitiesStore) GetByUsername(ctx context.Context, username string) (*Identity, error) {
	return s.findOne(ctx, bson.M{"username": normalize.Username(username)})
}

func (s *IdentitiesStore) findOne(ctx context.Context, filter bson.M) (*Identity, error) {
	var ident Identity
	if err := s.coll.FindOne(ctx, filter).Decode(&ident); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find identity")
	}
	return &ident, nil
}

// CompareAndSetPartner points id at partnerID in a single-document update. The write
// only applies when the identity is unpaired, or is already paired to partnerID with
// the same pairedAt (a resumed attempt). It reports whether the document matched.
func (s *IdentitiesStore) CompareAndSetPartner(ctx context.Context, id, partnerID string, pairedAt time.Time) (bool, error) {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"paired_id": nil},
			bson.M{"paired_id": partnerID, "paired_at": pairedAt},
		},
	}
	update := bson.M{"$set": bson.M{"paired_id": partnerID, "paired_at": pairedAt}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "set partner")
	}
	return res.MatchedCount == 1, nil
}

// ClearPartner undoes CompareAndSetPartner for a pairing attempt that could not
// complete. Only the exact (partnerID, pairedAt) write is reverted.
func (s *IdentitiesStore) ClearPartner(ctx context.Context, id, partnerID string, pairedAt time.Time) (bool, error) {
	filter := bson.M{"_id": id, "paired_id": partnerID, "paired_at": pairedAt}
	update := bson.M{"$unset": bson.M{"paired_id": "", "paired_at": ""}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "clear partner")
	}
	return res.ModifiedCount == 1, nil
}
