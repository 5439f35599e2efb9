package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/timegate"
)

// UnlockCheck is the answer of CheckUnlockable.
type UnlockCheck struct {
	IsUnlockable  bool
	DaysRemaining int
	UnlockAt      time.Time
	Status        data.ChestStatus
}

// ChestStats summarizes a chest from its counters. Per-author totals are
// counts only; they never reveal content.
type ChestStats struct {
	Chest         *data.Chest
	TotalChits    int64
	ChitsByAuthor map[string]int
	TotalRead     int64
	ReadByReader  map[string]int
	DaysRemaining int
}

// CreateChest starts a chest for two mutually paired owners. At most one live
// chest exists per pair; a second attempt returns ErrChestAlreadyActive.
func (s *Service) CreateChest(ctx context.Context, ownerA, ownerB string, durationDays int) (*data.Chest, error) {
	if durationDays < MinChestDays || durationDays > MaxChestDays {
		return nil, s.reject(ErrDurationRange)
	}
	if ownerA == ownerB {
		return nil, s.reject(ErrNotPaired)
	}

	a, err := s.identity(ctx, ownerA)
	if err != nil {
		return nil, err
	}
	b, err := s.identity(ctx, ownerB)
	if err != nil {
		return nil, err
	}
	if a.PairedID != b.ID || b.PairedID != a.ID {
		return nil, s.reject(ErrNotPaired)
	}

	key := data.PairKey(a.ID, b.ID)
	release, err := s.locker.Lock(ctx, pairLockKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "lock pair")
	}
	defer release()

	live, err := s.chests.FindLive(ctx, key)
	switch {
	case err == nil:
		return nil, s.reject(ErrChestAlreadyActive.WithMessage(
			fmt.Sprintf("an active chest already exists between you and your partner (%s)", live.ID)))
	case !errors.Is(err, data.ErrNotFound):
		return nil, err
	}

	now := s.now()
	c := &data.Chest{
		ID:            uuid.NewString(),
		OwnerA:        a.ID,
		OwnerB:        b.ID,
		PairKey:       key,
		LiveKey:       key,
		StartAt:       now,
		UnlockAt:      timegate.UnlockAt(now, durationDays, s.dayLength),
		Status:        data.StatusActive,
		DurationUnits: durationDays,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.chests.Insert(ctx, c); err != nil {
		// the unique live_key index catches writers that bypass the lock
		if errors.Is(err, data.ErrDuplicate) {
			return nil, s.reject(ErrChestAlreadyActive)
		}
		return nil, err
	}
	if err := s.counters.Init(ctx, c.ID); err != nil {
		s.log.Warn().Err(err).Str("chest_id", c.ID).Msg("failed to init chest counters")
	}

	s.metrics.ChestCreated()
	s.log.Info().
		Str("chest_id", c.ID).
		Str("pair_key", key).
		Int("duration_days", durationDays).
		Time("unlock_at", c.UnlockAt).
		Msg("chest created")
	return c, nil
}

// StartChest creates a chest between callerID and its partner. A zero
// durationDays uses the caller's saved settings.
func (s *Service) StartChest(ctx context.Context, callerID string, durationDays int) (*data.Chest, error) {
	partner, err := s.Partner(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if durationDays == 0 {
		st, err := s.settings.GetOrCreate(ctx, callerID, s.now())
		if err != nil {
			return nil, err
		}
		durationDays = st.ChestDurationDays
	}
	return s.CreateChest(ctx, callerID, partner.ID, durationDays)
}

// ActiveChest returns the live chest of the pair, or nil when there is none.
func (s *Service) ActiveChest(ctx context.Context, ownerA, ownerB string) (*data.Chest, error) {
	c, err := s.chests.FindLive(ctx, data.PairKey(ownerA, ownerB))
	if errors.Is(err, data.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetChest returns a chest the caller owns.
func (s *Service) GetChest(ctx context.Context, chestID, callerID string) (*data.Chest, error) {
	return s.memberChest(ctx, chestID, callerID)
}

// CheckUnlockable reports whether the deadline of a chest has passed. An active
// chest past its deadline is promoted to unlockable on the way.
func (s *Service) CheckUnlockable(ctx context.Context, chestID string) (*UnlockCheck, error) {
	c, err := s.chest(ctx, chestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res := &UnlockCheck{
		IsUnlockable:  timegate.IsUnlockable(now, c.UnlockAt),
		DaysRemaining: timegate.Remaining(now, c.UnlockAt, s.dayLength),
		UnlockAt:      c.UnlockAt,
		Status:        c.Status,
	}
	if res.IsUnlockable && c.Status == data.StatusActive {
		if c, err = s.advance(ctx, c, data.StatusUnlockable, now); err != nil {
			return nil, err
		}
		res.Status = c.Status
	}
	return res, nil
}

// SetChestStatus moves a chest exactly one step forward. Moving to unlockable
// or beyond requires the deadline to have passed. Losing a race to a writer
// that made the same move is not an error.
func (s *Service) SetChestStatus(ctx context.Context, chestID string, to data.ChestStatus) (*data.Chest, error) {
	if !to.Valid() {
		return nil, s.reject(ErrInvalidStatus)
	}
	c, err := s.chest(ctx, chestID)
	if err != nil {
		return nil, err
	}

	next, ok := c.Status.Next()
	if !ok || next != to {
		return nil, s.reject(ErrInvalidTransition.WithMessage(
			fmt.Sprintf("cannot move chest from %s to %s", c.Status, to)))
	}
	now := s.now()
	if !timegate.IsUnlockable(now, c.UnlockAt) {
		return nil, s.reject(ErrChestLocked)
	}

	moved, err := s.advance(ctx, c, to, now)
	if err != nil {
		return nil, err
	}
	if moved.Status != to {
		return nil, s.reject(ErrInvalidTransition.WithMessage(
			fmt.Sprintf("cannot move chest from %s to %s", moved.Status, to)))
	}
	return moved, nil
}

// OpenChest moves an unlocked chest to opened on behalf of one of its owners.
func (s *Service) OpenChest(ctx context.Context, chestID, callerID string) (*data.Chest, error) {
	c, err := s.memberChest(ctx, chestID, callerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !timegate.IsUnlockable(now, c.UnlockAt) {
		return nil, s.reject(ErrChestLocked)
	}
	return s.advanceTo(ctx, c, data.StatusOpened, now)
}

// FinishChest completes an unlocked chest on behalf of one of its owners,
// freeing the pair to start a new one.
func (s *Service) FinishChest(ctx context.Context, chestID, callerID string) (*data.Chest, error) {
	c, err := s.memberChest(ctx, chestID, callerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !timegate.IsUnlockable(now, c.UnlockAt) {
		return nil, s.reject(ErrChestLocked)
	}
	return s.advanceTo(ctx, c, data.StatusCompleted, now)
}

// ChestHistory returns every chest of the identity, newest first.
func (s *Service) ChestHistory(ctx context.Context, ownerID string) ([]*data.Chest, error) {
	return s.chests.ListByOwner(ctx, ownerID)
}

// ChestStats returns the counters of a chest the caller owns.
func (s *Service) ChestStats(ctx context.Context, chestID, callerID string) (*ChestStats, error) {
	c, err := s.memberChest(ctx, chestID, callerID)
	if err != nil {
		return nil, err
	}
	cnt, err := s.counters.Get(ctx, chestID)
	if err != nil {
		return nil, err
	}
	return &ChestStats{
		Chest:         c,
		TotalChits:    cnt.ChitCount,
		ChitsByAuthor: cnt.ChitCountByAuthor,
		TotalRead:     cnt.ReadCount,
		ReadByReader:  cnt.ReadCountByReader,
		DaysRemaining: timegate.Remaining(s.now(), c.UnlockAt, s.dayLength),
	}, nil
}

// advanceTo walks c forward one step at a time until it reaches target.
func (s *Service) advanceTo(ctx context.Context, c *data.Chest, target data.ChestStatus, now time.Time) (*data.Chest, error) {
	for !c.Status.AtLeast(target) {
		next, _ := c.Status.Next()
		var err error
		if c, err = s.advance(ctx, c, next, now); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// advance applies a single compare-and-set transition from c.Status to next
// and returns the chest as stored afterwards. When another writer moved the
// chest first, the reloaded chest is returned unchanged.
func (s *Service) advance(ctx context.Context, c *data.Chest, next data.ChestStatus, now time.Time) (*data.Chest, error) {
	moved, _, err := s.transition(ctx, c, next, now)
	return moved, err
}

// transition is advance that also reports whether this call made the move.
func (s *Service) transition(ctx context.Context, c *data.Chest, next data.ChestStatus, now time.Time) (*data.Chest, bool, error) {
	from := c.Status
	swapped, err := s.chests.UpdateStatus(ctx, c.ID, from, next, now)
	if err != nil {
		return nil, false, err
	}
	if !swapped {
		reloaded, err := s.chest(ctx, c.ID)
		return reloaded, false, err
	}

	s.metrics.Transition(string(from), string(next))
	s.log.Info().
		Str("chest_id", c.ID).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("chest status changed")

	moved := *c
	moved.Status = next
	moved.UpdatedAt = now
	switch next {
	case data.StatusOpened:
		moved.OpenedAt = &now
	case data.StatusCompleted:
		moved.CompletedAt = &now
		moved.LiveKey = ""
	}
	return &moved, true, nil
}
