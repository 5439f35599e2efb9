package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/timegate"
)

func TestCreateChest(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob := e.couple(t)

	c, err := e.svc.CreateChest(ctx, alice.ID, bob.ID, 7)
	require.NoError(t, err)

	now := e.clock.Now()
	assert.Equal(t, data.StatusActive, c.Status)
	assert.Equal(t, now, c.StartAt)
	assert.Equal(t, now.Add(7*timegate.Day), c.UnlockAt)
	assert.Equal(t, data.PairKey(alice.ID, bob.ID), c.LiveKey)
	assert.Equal(t, 7, c.DurationUnits)

	live, err := e.svc.ActiveChest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, live)
	assert.Equal(t, c.ID, live.ID)

	_, err = e.svc.CreateChest(ctx, bob.ID, alice.ID, 3)
	assert.ErrorIs(t, err, ErrChestAlreadyActive)
}

func TestCreateChest_Rejections(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob := e.couple(t)
	carol := e.identity(t, "carol", data.GenderFemale)

	for _, days := range []int{0, -1, 31} {
		_, err := e.svc.CreateChest(ctx, alice.ID, bob.ID, days)
		assert.ErrorIs(t, err, ErrDurationRange, "days=%d", days)
	}

	_, err := e.svc.CreateChest(ctx, carol.ID, bob.ID, 7)
	assert.ErrorIs(t, err, ErrNotPaired)

	_, err = e.svc.CreateChest(ctx, alice.ID, alice.ID, 7)
	assert.ErrorIs(t, err, ErrNotPaired)

	_, err = e.svc.CreateChest(ctx, alice.ID, "ghost", 7)
	assert.ErrorIs(t, err, ErrIdentityNotFound)

	for _, days := range []int{MinChestDays, MaxChestDays} {
		c, err := e.svc.CreateChest(ctx, alice.ID, bob.ID, days)
		require.NoError(t, err)
		_, err = e.svc.chests.UpdateStatus(ctx, c.ID, data.StatusActive, data.StatusCompleted, e.clock.Now())
		require.NoError(t, err)
	}
}

func TestCreateChest_ConcurrentCallsCreateOne(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob := e.couple(t)

	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if i%2 == 1 {
				a, b = b, a
			}
			_, err := e.svc.CreateChest(ctx, a, b, 7)
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, ErrChestAlreadyActive), "got %v", err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, e.chests.Count())
}

func TestCreateChest_AfterCompletion(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob, c := e.chest(t, 1)

	e.clock.Advance(timegate.Day)
	_, err := e.svc.FinishChest(ctx, c.ID, alice.ID)
	require.NoError(t, err)

	live, err := e.svc.ActiveChest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, live)

	next, err := e.svc.CreateChest(ctx, alice.ID, bob.ID, 7)
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, next.ID)
}

func TestStartChest_UsesSettings(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob := e.couple(t)

	_, err := e.svc.UpdateSettings(ctx, bob.ID, 3)
	require.NoError(t, err)

	c, err := e.svc.StartChest(ctx, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, c.DurationUnits)
	assert.True(t, c.HasOwner(alice.ID))

	carol := e.identity(t, "carol", data.GenderFemale)
	_, err = e.svc.StartChest(ctx, carol.ID, 0)
	assert.ErrorIs(t, err, ErrNotPaired)
}

func TestCheckUnlockable(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, _, c := e.chest(t, 7)

	res, err := e.svc.CheckUnlockable(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, res.IsUnlockable)
	assert.Equal(t, 7, res.DaysRemaining)
	assert.Equal(t, data.StatusActive, res.Status)

	e.clock.Advance(3*timegate.Day + time.Hour)
	res, err = e.svc.CheckUnlockable(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.DaysRemaining, "remaining days round up")

	e.clock.Advance(4 * timegate.Day)
	res, err = e.svc.CheckUnlockable(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, res.IsUnlockable)
	assert.Equal(t, 0, res.DaysRemaining)
	assert.Equal(t, data.StatusUnlockable, res.Status)

	stored, err := e.chests.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusUnlockable, stored.Status)

	_, err = e.svc.CheckUnlockable(ctx, "missing")
	assert.ErrorIs(t, err, ErrChestNotFound)
}

func TestCheckUnlockable_ExactDeadline(t *testing.T) {
	e := newTestEnv(t)
	_, _, c := e.chest(t, 2)

	e.clock.Advance(2*timegate.Day - time.Millisecond)
	res, err := e.svc.CheckUnlockable(context.Background(), c.ID)
	require.NoError(t, err)
	assert.False(t, res.IsUnlockable)
	assert.Equal(t, 1, res.DaysRemaining)

	e.clock.Advance(time.Millisecond)
	res, err = e.svc.CheckUnlockable(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, res.IsUnlockable)
}

func TestSetChestStatus(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, _, c := e.chest(t, 1)

	_, err := e.svc.SetChestStatus(ctx, c.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = e.svc.SetChestStatus(ctx, c.ID, data.StatusOpened)
	assert.ErrorIs(t, err, ErrInvalidTransition, "skipping a step")

	_, err = e.svc.SetChestStatus(ctx, c.ID, data.StatusUnlockable)
	assert.ErrorIs(t, err, ErrChestLocked, "deadline not reached")

	e.clock.Advance(timegate.Day)
	for _, to := range []data.ChestStatus{data.StatusUnlockable, data.StatusOpened, data.StatusCompleted} {
		got, err := e.svc.SetChestStatus(ctx, c.ID, to)
		require.NoError(t, err, "to %s", to)
		assert.Equal(t, to, got.Status)
	}

	_, err = e.svc.SetChestStatus(ctx, c.ID, data.StatusActive)
	assert.ErrorIs(t, err, ErrInvalidTransition, "no way back")

	stored, err := e.chests.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LiveKey)
	require.NotNil(t, stored.OpenedAt)
	require.NotNil(t, stored.CompletedAt)
}

func TestOpenAndFinishChest(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob, c := e.chest(t, 2)
	carol := e.identity(t, "carol", data.GenderFemale)

	_, err := e.svc.OpenChest(ctx, c.ID, alice.ID)
	assert.ErrorIs(t, err, ErrChestLocked)

	e.clock.Advance(2 * timegate.Day)

	_, err = e.svc.OpenChest(ctx, c.ID, carol.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	opened, err := e.svc.OpenChest(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusOpened, opened.Status)

	// opening twice is harmless
	opened, err = e.svc.OpenChest(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusOpened, opened.Status)

	done, err := e.svc.FinishChest(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusCompleted, done.Status)
	assert.Empty(t, done.LiveKey)
}

func TestChestHistoryAndStats(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice, bob, first := e.chest(t, 1)

	_, err := e.svc.AddChit(ctx, first.ID, alice.ID, "one", data.EmotionHappy)
	require.NoError(t, err)
	_, err = e.svc.AddChit(ctx, first.ID, alice.ID, "two", data.EmotionSad)
	require.NoError(t, err)

	e.clock.Advance(timegate.Day)
	_, err = e.svc.FinishChest(ctx, first.ID, alice.ID)
	require.NoError(t, err)

	e.clock.Advance(time.Minute)
	second, err := e.svc.CreateChest(ctx, alice.ID, bob.ID, 5)
	require.NoError(t, err)

	history, err := e.svc.ChestHistory(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	stats, err := e.svc.ChestStats(ctx, first.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalChits)
	assert.Equal(t, 2, stats.ChitsByAuthor[alice.ID])
	assert.Equal(t, 0, stats.DaysRemaining)

	stats, err = e.svc.ChestStats(ctx, second.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalChits)
	assert.Equal(t, 5, stats.DaysRemaining)
}
