package service

import (
	"context"
	"time"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
)

// The interfaces below are satisfied by the MongoDB stores in internal/data and
// by the in-memory stores in internal/data/memory.

type IdentityStore interface {
	Create(ctx context.Context, username, hashedPassword string, gender data.Gender) (*data.Identity, error)
	GetByID(ctx context.Context, id string) (*data.Identity, error)
	GetByUsername(ctx context.Context, username string) (*data.Identity, error)
	CompareAndSetPartner(ctx context.Context, id, partnerID string, pairedAt time.Time) (bool, error)
	ClearPartner(ctx context.Context, id, partnerID string, pairedAt time.Time) (bool, error)
}

type PairingStore interface {
	InsertIntent(ctx context.Context, rec *data.PairingRecord) error
	Get(ctx context.Context, key string) (*data.PairingRecord, error)
	MarkCommitted(ctx context.Context, key string) error
	DeleteIntent(ctx context.Context, key string) error
	HasHistorical(ctx context.Context, a, b string) (bool, error)
	ListUncommitted(ctx context.Context) ([]*data.PairingRecord, error)
}

type ChestStore interface {
	Insert(ctx context.Context, c *data.Chest) error
	GetByID(ctx context.Context, id string) (*data.Chest, error)
	FindLive(ctx context.Context, pairKey string) (*data.Chest, error)
	ExistsWithStatus(ctx context.Context, pairKey string, statuses ...data.ChestStatus) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to data.ChestStatus, at time.Time) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*data.Chest, error)
	ListDue(ctx context.Context, now time.Time, limit int64) ([]*data.Chest, error)
}

type ChitStore interface {
	Insert(ctx context.Context, c *data.Chit) error
	Get(ctx context.Context, chestID, chitID string) (*data.Chit, error)
	ListByAuthor(ctx context.Context, chestID, authorID string) ([]*data.Chit, error)
	ListByChest(ctx context.Context, chestID string) ([]*data.Chit, error)
	MarkRead(ctx context.Context, chestID, chitID, readerID string, at time.Time) (bool, error)
	CountUnread(ctx context.Context, chestID string) (int64, error)
}

type CounterStore interface {
	Init(ctx context.Context, chestID string) error
	IncChits(ctx context.Context, chestID, authorID string) error
	IncReads(ctx context.Context, chestID, readerID string) error
	Get(ctx context.Context, chestID string) (*data.ChestCounters, error)
}

type SettingsStore interface {
	GetOrCreate(ctx context.Context, ownerID string, now time.Time) (*data.Settings, error)
	Save(ctx context.Context, st *data.Settings) error
}

var (
	_ IdentityStore = (*data.IdentitiesStore)(nil)
	_ PairingStore  = (*data.PairingsStore)(nil)
	_ ChestStore    = (*data.ChestsStore)(nil)
	_ ChitStore     = (*data.ChitsStore)(nil)
	_ CounterStore  = (*data.CountersStore)(nil)
	_ SettingsStore = (*data.SettingsStore)(nil)
)
