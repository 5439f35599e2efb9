package data

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SettingsStore provides per-identity settings.
type SettingsStore struct {
	coll *mongo.Collection
}

// NewSettingsStore returns a SettingsStore using the given collection.
func NewSettingsStore(coll *mongo.Collection) *SettingsStore {
	return &SettingsStore{coll: coll}
}

// GetOrCreate returns the owner's settings, inserting defaults on first access.
// The upsert makes concurrent first reads converge on one document.
func (s *SettingsStore) GetOrCreate(ctx context.Context, ownerID string, now time.Time) (*Settings, error) {
	defaults := DefaultSettings(ownerID, now)
	update := bson.M{"$setOnInsert": bson.M{
		"chest_duration_days":   defaults.ChestDurationDays,
		"notifications_enabled": defaults.NotificationsEnabled,
		"sound_enabled":         defaults.SoundEnabled,
		"theme":                 defaults.Theme,
		"updated_at":            defaults.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var st Settings
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": ownerID}, update, opts).Decode(&st); err != nil {
		return nil, errors.Wrap(err, "get or create settings")
	}
	return &st, nil
}

// Save overwrites the owner's settings.
func (s *SettingsStore) Save(ctx context.Context, st *Settings) error {
	update := bson.M{"$set": bson.M{
		"chest_duration_days":   st.ChestDurationDays,
		"notifications_enabled": st.NotificationsEnabled,
		"sound_enabled":         st.SoundEnabled,
		"theme":                 st.Theme,
		"updated_at":            st.UpdatedAt,
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": st.OwnerID}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "save settings")
	}
	return nil
}
