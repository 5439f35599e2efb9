//go:build integration

package data

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/db"
)

type StoresSuite struct {
	suite.Suite

	container *mongodb.MongoDBContainer
	client    *db.Client
	ctx       context.Context
	now       time.Time
}

func TestStoresSuite(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(StoresSuite))
}

func (s *StoresSuite) SetupSuite() {
	s.ctx = context.Background()
	container, err := mongodb.Run(s.ctx, "mongo:7")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)
	s.client, err = db.New(s.ctx, uri, "chest_data_it")
	s.Require().NoError(err)
}

func (s *StoresSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close(context.Background())
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *StoresSuite) SetupTest() {
	s.Require().NoError(s.client.Drop(s.ctx))
	s.Require().NoError(s.client.CreateIndexes(s.ctx))
	s.now = time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
}

func (s *StoresSuite) TestIdentities() {
	ids := NewIdentitiesStore(s.client.IdentitiesCollection())

	alice, err := ids.Create(s.ctx, " Alice ", "hash", GenderFemale)
	s.Require().NoError(err)
	s.Equal("alice", alice.Username)

	_, err = ids.Create(s.ctx, "ALICE", "hash", GenderFemale)
	s.ErrorIs(err, ErrDuplicate)

	got, err := ids.GetByUsername(s.ctx, "alice ")
	s.Require().NoError(err)
	s.Equal(alice.ID, got.ID)

	_, err = ids.GetByID(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)

	bob, err := ids.Create(s.ctx, "bob", "hash", GenderMale)
	s.Require().NoError(err)

	ok, err := ids.CompareAndSetPartner(s.ctx, alice.ID, bob.ID, s.now)
	s.Require().NoError(err)
	s.True(ok)
	// same write again is a resume
	ok, err = ids.CompareAndSetPartner(s.ctx, alice.ID, bob.ID, s.now)
	s.Require().NoError(err)
	s.True(ok)
	// a different partner does not match
	ok, err = ids.CompareAndSetPartner(s.ctx, alice.ID, "someone-else", s.now)
	s.Require().NoError(err)
	s.False(ok)

	got, err = ids.GetByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(bob.ID, got.PairedID)
	s.Require().NotNil(got.PairedAt)
	s.True(s.now.Equal(*got.PairedAt))

	cleared, err := ids.ClearPartner(s.ctx, alice.ID, bob.ID, s.now.Add(time.Second))
	s.Require().NoError(err)
	s.False(cleared)
	cleared, err = ids.ClearPartner(s.ctx, alice.ID, bob.ID, s.now)
	s.Require().NoError(err)
	s.True(cleared)

	got, err = ids.GetByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(got.PairedID)
	s.Nil(got.PairedAt)
}

func (s *StoresSuite) TestPairings() {
	pairings := NewPairingsStore(s.client.PairingsCollection())
	rec := &PairingRecord{ID: PairKey("a", "b"), IDA: "a", IDB: "b", PairedAt: s.now}

	s.Require().NoError(pairings.InsertIntent(s.ctx, rec))
	s.ErrorIs(pairings.InsertIntent(s.ctx, rec), ErrDuplicate)

	pending, err := pairings.ListUncommitted(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)

	s.Require().NoError(pairings.MarkCommitted(s.ctx, rec.ID))
	s.ErrorIs(pairings.MarkCommitted(s.ctx, "x_y"), ErrNotFound)

	// committed records survive DeleteIntent
	s.Require().NoError(pairings.DeleteIntent(s.ctx, rec.ID))
	got, err := pairings.Get(s.ctx, rec.ID)
	s.Require().NoError(err)
	s.True(got.Committed)

	pending, err = pairings.ListUncommitted(s.ctx)
	s.Require().NoError(err)
	s.Empty(pending)

	_, err = pairings.Get(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.client.PairingsCollection().InsertOne(s.ctx, &PairingRecord{ID: PairKey("c", "d"), IDA: "c", IDB: "d", PairedAt: s.now, Historical: true, Committed: true})
	s.Require().NoError(err)
	hist, err := pairings.HasHistorical(s.ctx, "d", "c")
	s.Require().NoError(err)
	s.True(hist)
	hist, err = pairings.HasHistorical(s.ctx, "a", "b")
	s.Require().NoError(err)
	s.False(hist)
}

func (s *StoresSuite) newChest(a, b string, unlockAt time.Time) *Chest {
	key := PairKey(a, b)
	return &Chest{
		ID:            uuid.NewString(),
		OwnerA:        a,
		OwnerB:        b,
		PairKey:       key,
		LiveKey:       key,
		StartAt:       s.now,
		UnlockAt:      unlockAt,
		Status:        StatusActive,
		DurationUnits: 1,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
}

func (s *StoresSuite) TestChestsLifecycle() {
	chests := NewChestsStore(s.client.ChestsCollection())
	c := s.newChest("a", "b", s.now.Add(24*time.Hour))

	s.Require().NoError(chests.Insert(s.ctx, c))
	s.ErrorIs(chests.Insert(s.ctx, s.newChest("b", "a", s.now)), ErrDuplicate)

	live, err := chests.FindLive(s.ctx, c.PairKey)
	s.Require().NoError(err)
	s.Equal(c.ID, live.ID)

	due, err := chests.ListDue(s.ctx, s.now, 10)
	s.Require().NoError(err)
	s.Empty(due)
	due, err = chests.ListDue(s.ctx, c.UnlockAt, 10)
	s.Require().NoError(err)
	s.Len(due, 1)

	exists, err := chests.ExistsWithStatus(s.ctx, c.PairKey, StatusActive, StatusUnlockable)
	s.Require().NoError(err)
	s.True(exists)

	at := c.UnlockAt
	for _, step := range []struct{ from, to ChestStatus }{
		{StatusActive, StatusUnlockable},
		{StatusUnlockable, StatusOpened},
		{StatusOpened, StatusCompleted},
	} {
		ok, err := chests.UpdateStatus(s.ctx, c.ID, step.from, step.to, at)
		s.Require().NoError(err)
		s.True(ok, "%s -> %s", step.from, step.to)
	}
	// a stale writer loses the compare-and-swap
	ok, err := chests.UpdateStatus(s.ctx, c.ID, StatusOpened, StatusCompleted, at)
	s.Require().NoError(err)
	s.False(ok)

	got, err := chests.GetByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(StatusCompleted, got.Status)
	s.Empty(got.LiveKey)
	s.NotNil(got.OpenedAt)
	s.NotNil(got.CompletedAt)

	_, err = chests.FindLive(s.ctx, c.PairKey)
	s.ErrorIs(err, ErrNotFound)

	// completion frees the pair
	s.Require().NoError(chests.Insert(s.ctx, s.newChest("a", "b", s.now)))
	list, err := chests.ListByOwner(s.ctx, "b")
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *StoresSuite) TestConcurrentLiveChestInsert() {
	chests := NewChestsStore(s.client.ChestsCollection())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := chests.Insert(s.ctx, s.newChest("a", "b", s.now))
			if err == nil {
				wins.Add(1)
				return
			}
			assert.ErrorIs(s.T(), err, ErrDuplicate)
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

func (s *StoresSuite) TestChitsReadOnce() {
	chits := NewChitsStore(s.client.ChitsCollection())
	for i, author := range []string{"a", "b", "a"} {
		s.Require().NoError(chits.Insert(s.ctx, &Chit{
			ID:        uuid.NewString(),
			ChestID:   "c1",
			AuthorID:  author,
			Content:   "note",
			Emotion:   EmotionHappy,
			CreatedAt: s.now.Add(time.Duration(i) * time.Minute),
		}))
	}

	fromA, err := chits.ListByAuthor(s.ctx, "c1", "a")
	s.Require().NoError(err)
	s.Require().Len(fromA, 2)
	s.True(fromA[0].CreatedAt.Before(fromA[1].CreatedAt))

	all, err := chits.ListByChest(s.ctx, "c1")
	s.Require().NoError(err)
	s.Len(all, 3)

	var flips atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := chits.MarkRead(s.ctx, "c1", fromA[0].ID, "b", s.now)
			if assert.NoError(s.T(), err) && first {
				flips.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), flips.Load())

	unread, err := chits.CountUnread(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(int64(2), unread)

	_, err = chits.Get(s.ctx, "other-chest", fromA[0].ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoresSuite) TestCountersAndSettings() {
	counters := NewCountersStore(s.client.CountersCollection())
	s.Require().NoError(counters.Init(s.ctx, "c1"))
	s.Require().NoError(counters.Init(s.ctx, "c1"))
	s.Require().NoError(counters.IncChits(s.ctx, "c1", "a"))
	s.Require().NoError(counters.IncChits(s.ctx, "c1", "a"))
	s.Require().NoError(counters.IncReads(s.ctx, "c1", "b"))

	cnt, err := counters.Get(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(int64(2), cnt.ChitCount)
	s.Equal(2, cnt.ChitCountByAuthor["a"])
	s.Equal(int64(1), cnt.ReadCount)
	s.Equal(1, cnt.ReadCountByReader["b"])

	empty, err := counters.Get(s.ctx, "none")
	s.Require().NoError(err)
	s.Zero(empty.ChitCount)

	settings := NewSettingsStore(s.client.SettingsCollection())
	st, err := settings.GetOrCreate(s.ctx, "a", s.now)
	s.Require().NoError(err)
	s.Equal(DefaultChestDurationDays, st.ChestDurationDays)

	s.True(st.NotificationsEnabled)
	s.True(st.SoundEnabled)
	s.Equal(ThemeLight, st.Theme)

	st.ChestDurationDays = 12
	st.SoundEnabled = false
	st.Theme = ThemeDark
	st.UpdatedAt = s.now.Add(time.Hour)
	s.Require().NoError(settings.Save(s.ctx, st))

	st, err = settings.GetOrCreate(s.ctx, "a", s.now.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(12, st.ChestDurationDays)
	s.False(st.SoundEnabled)
	s.True(st.NotificationsEnabled)
	s.Equal(ThemeDark, st.Theme)
	s.True(st.UpdatedAt.Equal(s.now.Add(time.Hour)))
}

func TestPairKeyIsSymmetric(t *testing.T) {
	require.Equal(t, PairKey("x", "y"), PairKey("y", "x"))
}
