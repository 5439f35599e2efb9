// Package app assembles the storage backend and locker the service runs on.
// Both the gRPC server and the ops CLI build their Service through it.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/config"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data/memory"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/db"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/lock"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

// Backend holds the stores and locker of one process. Deps is ready to pass to
// service.New once Metrics, Logger and Clock are filled in.
type Backend struct {
	Deps service.Deps
	// Mongo is nil for the memory backend.
	Mongo *db.Client

	closers []func(context.Context) error
}

// Open connects the backend selected by cfg. With CHEST_REDIS_URL set the
// locker is shared through Redis; otherwise it is process-local.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		b.Deps = MemoryDeps()
	default:
		client, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		b.Mongo = client
		b.closers = append(b.closers, client.Close)

		if err := client.CreateIndexes(ctx); err != nil {
			_ = b.Close(context.Background())
			return nil, err
		}
		b.Deps = MongoDeps(client)
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = b.Close(context.Background())
			return nil, errors.Wrap(err, "parse redis url")
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			_ = b.Close(context.Background())
			return nil, errors.Wrap(err, "ping redis")
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		b.Deps.Locker = lock.NewRedis(rdb, lock.WithTTL(cfg.LockTTL))
		log.Info().Dur("lock_ttl", cfg.LockTTL).Msg("using redis locker")
	} else {
		b.Deps.Locker = lock.NewLocal()
	}

	b.Deps.DayLength = cfg.DayLength
	return b, nil
}

// MongoDeps wires every store to its MongoDB collection.
func MongoDeps(c *db.Client) service.Deps {
	return service.Deps{
		Identities: data.NewIdentitiesStore(c.IdentitiesCollection()),
		Pairings:   data.NewPairingsStore(c.PairingsCollection()),
		Chests:     data.NewChestsStore(c.ChestsCollection()),
		Chits:      data.NewChitsStore(c.ChitsCollection()),
		Counters:   data.NewCountersStore(c.CountersCollection()),
		Settings:   data.NewSettingsStore(c.SettingsCollection()),
	}
}

// MemoryDeps wires fresh in-memory stores.
func MemoryDeps() service.Deps {
	return service.Deps{
		Identities: memory.NewIdentities(),
		Pairings:   memory.NewPairings(),
		Chests:     memory.NewChests(),
		Chits:      memory.NewChits(),
		Counters:   memory.NewCounters(),
		Settings:   memory.NewSettings(),
	}
}

// Ping reports whether the database is reachable. The memory backend is always ready.
func (b *Backend) Ping(ctx context.Context) error {
	if b.Mongo == nil {
		return nil
	}
	return b.Mongo.Ping(ctx)
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close(ctx context.Context) error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
