package db

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// These tests are integration tests and require a running MongoDB instance.
// Set MONGODB_URI in the environment before running them.

func TestNewAndCreateIndexes(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	c, err := New(ctx, uri, "chest_db_indexes_test")
	if err != nil {
		t.Fatalf("failed to connect to DB: %v", err)
	}
	defer func() {
		_ = c.Drop(context.Background())
		_ = c.Close(context.Background())
	}()

	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes failed: %v", err)
	}
	// creating twice must be a no-op
	if err := c.CreateIndexes(ctx); err != nil {
		t.Fatalf("CreateIndexes second run failed: %v", err)
	}

	// the partial unique index refuses a second live chest for the same pair
	chests := c.ChestsCollection()
	if _, err := chests.InsertOne(ctx, bson.M{"_id": "c1", "live_key": "a_b", "pair_key": "a_b"}); err != nil {
		t.Fatalf("insert first live chest: %v", err)
	}
	_, err = chests.InsertOne(ctx, bson.M{"_id": "c2", "live_key": "a_b", "pair_key": "a_b"})
	if !mongo.IsDuplicateKeyError(err) {
		t.Fatalf("expected duplicate key error for second live chest, got %v", err)
	}

	// chests without live_key (completed) never collide
	if _, err := chests.InsertOne(ctx, bson.M{"_id": "c3", "pair_key": "a_b"}); err != nil {
		t.Fatalf("insert completed chest: %v", err)
	}
	if _, err := chests.InsertOne(ctx, bson.M{"_id": "c4", "pair_key": "a_b"}); err != nil {
		t.Fatalf("insert second completed chest: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
}
