package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data/memory"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/lock"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	svc        *Service
	clock      *fakeClock
	identities *memory.Identities
	pairings   *memory.Pairings
	chests     *memory.Chests
	chits      *memory.Chits
	counters   *memory.Counters
	settings   *memory.Settings
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	e := &testEnv{
		clock:      newFakeClock(),
		identities: memory.NewIdentities(),
		pairings:   memory.NewPairings(),
		chests:     memory.NewChests(),
		chits:      memory.NewChits(),
		counters:   memory.NewCounters(),
		settings:   memory.NewSettings(),
	}
	d := Deps{
		Identities: e.identities,
		Pairings:   e.pairings,
		Chests:     e.chests,
		Chits:      e.chits,
		Counters:   e.counters,
		Settings:   e.settings,
		Locker:     lock.NewLocal(),
		Logger:     zerolog.Nop(),
		Clock:      e.clock.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	e.svc = New(d)
	return e
}

// identity creates an identity directly in the store, skipping bcrypt.
func (e *testEnv) identity(t *testing.T, username string, gender data.Gender) *data.Identity {
	t.Helper()
	ident, err := e.identities.Create(context.Background(), username, "hash", gender)
	require.NoError(t, err)
	return ident
}

// couple returns a paired female and male identity.
func (e *testEnv) couple(t *testing.T) (alice, bob *data.Identity) {
	t.Helper()
	alice = e.identity(t, "alice", data.GenderFemale)
	bob = e.identity(t, "bob", data.GenderMale)
	_, err := e.svc.Pair(context.Background(), alice.ID, "bob")
	require.NoError(t, err)
	return alice, bob
}

// chest pairs alice and bob and starts a chest of the given length.
func (e *testEnv) chest(t *testing.T, days int) (alice, bob *data.Identity, c *data.Chest) {
	t.Helper()
	alice, bob = e.couple(t)
	c, err := e.svc.CreateChest(context.Background(), alice.ID, bob.ID, days)
	require.NoError(t, err)
	return alice, bob, c
}
