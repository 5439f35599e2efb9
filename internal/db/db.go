// Package db manages MongoDB connections and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "chest_db"

// Client wraps mongo.Client and exposes collections.
type Client struct {
	// client is the underlying MongoDB connection (thread-safe, can be reused)
	client *mongo.Client

	// db is the application database; every collection is reached through it
	db *mongo.Database
}

// New connects to MongoDB and returns a Client bound to the named database.
func New(ctx context.Context, mongoURI, database string) (*Client, error) {
	if database == "" {
		database = DefaultDatabase
	}

	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping with its own deadline so a dead server fails startup quickly
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database(database),
	}, nil
}

// IdentitiesCollection returns the identities collection.
func (c *Client) IdentitiesCollection() *mongo.Collection { return c.db.Collection("identities") }

// PairingsCollection returns the pairing history collection.
func (c *Client) PairingsCollection() *mongo.Collection { return c.db.Collection("pairings") }

// ChestsCollection returns the chests collection.
func (c *Client) ChestsCollection() *mongo.Collection { return c.db.Collection("chests") }

// ChitsCollection returns the chits collection.
func (c *Client) ChitsCollection() *mongo.Collection { return c.db.Collection("chits") }

// CountersCollection returns the per-chest counters collection.
func (c *Client) CountersCollection() *mongo.Collection { return c.db.Collection("chest_counters") }

// SettingsCollection returns the settings collection.
func (c *Client) SettingsCollection() *mongo.Collection { return c.db.Collection("settings") }

// Ping checks the connection; used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Drop removes the whole database. Only tests call it.
func (c *Client) Drop(ctx context.Context) error {
	return c.db.Drop(ctx)
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the stores and invariants rely on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	// ===== IDENTITIES =====
	// usernames are unique; signup relies on the duplicate key error
	_, err := c.IdentitiesCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create identities index: %w", err)
	}

	// ===== CHESTS =====
	chestIndexes := []mongo.IndexModel{
		{
			// At most one live chest per pair. live_key only exists while the chest
			// is active, unlockable or opened, so completed chests drop out of the index.
			Keys: bson.D{{Key: "live_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"live_key": bson.M{"$exists": true}}),
		},
		{
			// settings lock and history lookups per pair
			Keys: bson.D{{Key: "pair_key", Value: 1}, {Key: "status", Value: 1}},
		},
		{Keys: bson.D{{Key: "owner_a", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_b", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			// sweeper scan for chests past their deadline
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "unlock_at", Value: 1}},
		},
	}
	if _, err := c.ChestsCollection().Indexes().CreateMany(ctx, chestIndexes); err != nil {
		return fmt.Errorf("failed to create chest indexes: %w", err)
	}

	// ===== CHITS =====
	chitIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "chest_id", Value: 1}, {Key: "author_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "chest_id", Value: 1}, {Key: "is_read", Value: 1}}},
	}
	if _, err := c.ChitsCollection().Indexes().CreateMany(ctx, chitIndexes); err != nil {
		return fmt.Errorf("failed to create chit indexes: %w", err)
	}

	// ===== PAIRINGS =====
	_, err = c.PairingsCollection().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "committed", Value: 1}, {Key: "historical", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create pairings index: %w", err)
	}

	return nil
}
