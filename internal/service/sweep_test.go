package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/timegate"
)

func TestSweepDue(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, _, short := e.chest(t, 1)

	carol := e.identity(t, "carol", data.GenderFemale)
	dave := e.identity(t, "dave", data.GenderMale)
	_, err := e.svc.Pair(ctx, carol.ID, "dave")
	require.NoError(t, err)
	long, err := e.svc.CreateChest(ctx, carol.ID, dave.ID, 5)
	require.NoError(t, err)

	n, err := e.svc.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	e.clock.Advance(timegate.Day)
	n, err = e.svc.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := e.chests.GetByID(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusUnlockable, got.Status)
	got, err = e.chests.GetByID(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, data.StatusActive, got.Status)

	n, err = e.svc.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "already promoted")
}

func TestSweeper_Run(t *testing.T) {
	e := newTestEnv(t)
	_, _, c := e.chest(t, 1)
	e.clock.Advance(timegate.Day)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(e.svc, 5*time.Millisecond, zerolog.Nop()).Run(ctx) }()

	assert.Eventually(t, func() bool {
		got, err := e.chests.GetByID(context.Background(), c.ID)
		return err == nil && got.Status == data.StatusUnlockable
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_Disabled(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSweeper(e.svc, 0, zerolog.Nop()).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
