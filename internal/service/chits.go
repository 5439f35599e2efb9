package service

import (
	"context"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/timegate"
)

// ReadReceipt is the result of MarkChitRead.
type ReadReceipt struct {
	ChitID      string
	ReadAt      time.Time
	ChestStatus data.ChestStatus
	// FirstRead is false when the chit had already been read.
	FirstRead bool
}

// ChitStats is what one reader may know about a chest: how much the partner
// wrote and how much of it the reader has read. Emotions of the partner's chits
// are only broken down once the chest has unlocked.
type ChitStats struct {
	ChestID       string
	Status        data.ChestStatus
	TotalChits    int
	ReadChits     int
	UnreadChits   int
	MyChits       int
	EmotionCounts map[data.Emotion]int
	Progress      float64
	DaysRemaining int
}

// ChestChits groups the partner chits of one unlocked chest.
type ChestChits struct {
	Chest     *data.Chest
	PartnerID string
	Chits     []*data.Chit
}

// AddChit stores a chit written by authorID into an active chest before its
// deadline. Content is trimmed before validation.
func (s *Service) AddChit(ctx context.Context, chestID, authorID, content string, emotion data.Emotion) (*data.Chit, error) {
	if !emotion.Valid() {
		return nil, s.reject(ErrInvalidEmotion)
	}
	text := normalize.Content(content)
	if text == "" {
		return nil, s.reject(ErrEmptyContent)
	}
	if utf8.RuneCountInString(text) > MaxChitLength {
		return nil, s.reject(ErrContentTooLong)
	}

	c, err := s.memberChest(ctx, chestID, authorID)
	if err != nil {
		return nil, err
	}
	if c.Status != data.StatusActive {
		return nil, s.reject(ErrWrongState)
	}
	// the stored status may lag behind the clock; the deadline decides
	now := s.now()
	if timegate.IsUnlockable(now, c.UnlockAt) {
		return nil, s.reject(ErrWrongState.WithMessage("chest has already unlocked; cannot add new chits"))
	}

	chit := &data.Chit{
		ID:        uuid.NewString(),
		ChestID:   c.ID,
		AuthorID:  authorID,
		Content:   text,
		Emotion:   emotion,
		CreatedAt: now,
	}
	if err := s.chits.Insert(ctx, chit); err != nil {
		return nil, err
	}
	if err := s.counters.IncChits(ctx, c.ID, authorID); err != nil {
		s.log.Warn().Err(err).Str("chest_id", c.ID).Msg("failed to count chit")
	}

	s.metrics.ChitAdded(string(emotion))
	s.log.Debug().Str("chest_id", c.ID).Str("chit_id", chit.ID).Str("emotion", string(emotion)).Msg("chit added")
	return chit, nil
}

// ListChitsForReader returns the partner's chits of a chest in creation order.
// Before the deadline the list is empty; the reader's own chits are never
// returned.
func (s *Service) ListChitsForReader(ctx context.Context, chestID, readerID string) ([]*data.Chit, error) {
	c, err := s.memberChest(ctx, chestID, readerID)
	if err != nil {
		return nil, err
	}
	if !timegate.IsUnlockable(s.now(), c.UnlockAt) {
		return []*data.Chit{}, nil
	}
	return s.chits.ListByAuthor(ctx, c.ID, c.PartnerOf(readerID))
}

// MarkChitRead marks one of the partner's chits as read. The first read opens
// the chest and reading the last unread chit of the chest completes it.
// Marking an already read chit is a no-op that still succeeds.
func (s *Service) MarkChitRead(ctx context.Context, chestID, chitID, readerID string) (*ReadReceipt, error) {
	c, err := s.memberChest(ctx, chestID, readerID)
	if err != nil {
		return nil, err
	}
	chit, err := s.chits.Get(ctx, c.ID, chitID)
	if errors.Is(err, data.ErrNotFound) {
		return nil, s.reject(ErrChitNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load chit")
	}
	// own chits stay invisible to their author
	if chit.AuthorID == readerID {
		return nil, s.reject(ErrChitNotFound)
	}

	now := s.now()
	if !timegate.IsUnlockable(now, c.UnlockAt) {
		return nil, s.reject(ErrChestLocked)
	}

	release, err := s.locker.Lock(ctx, chestLockKey(c.ID))
	if err != nil {
		return nil, errors.Wrap(err, "lock chest")
	}
	defer release()

	if c, err = s.advanceTo(ctx, c, data.StatusOpened, now); err != nil {
		return nil, err
	}

	first, err := s.chits.MarkRead(ctx, c.ID, chit.ID, readerID, now)
	if err != nil {
		return nil, err
	}
	receipt := &ReadReceipt{ChitID: chit.ID, ReadAt: now, FirstRead: first}
	if first {
		if err := s.counters.IncReads(ctx, c.ID, readerID); err != nil {
			s.log.Warn().Err(err).Str("chest_id", c.ID).Msg("failed to count read")
		}
		s.metrics.ChitRead()
	} else if chit.ReadAt != nil {
		receipt.ReadAt = *chit.ReadAt
	}

	if c.Status == data.StatusOpened {
		unread, err := s.chits.CountUnread(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		if unread == 0 {
			if c, err = s.advance(ctx, c, data.StatusCompleted, now); err != nil {
				return nil, err
			}
		}
	}
	receipt.ChestStatus = c.Status
	return receipt, nil
}

// ChitStats returns the reader's view of a chest.
func (s *Service) ChitStats(ctx context.Context, chestID, readerID string) (*ChitStats, error) {
	c, err := s.memberChest(ctx, chestID, readerID)
	if err != nil {
		return nil, err
	}
	cnt, err := s.counters.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	partnerID := c.PartnerOf(readerID)
	st := &ChitStats{
		ChestID:       c.ID,
		Status:        c.Status,
		TotalChits:    cnt.ChitCountByAuthor[partnerID],
		ReadChits:     cnt.ReadCountByReader[readerID],
		MyChits:       cnt.ChitCountByAuthor[readerID],
		EmotionCounts: make(map[data.Emotion]int),
		DaysRemaining: timegate.Remaining(now, c.UnlockAt, s.dayLength),
	}

	if timegate.IsUnlockable(now, c.UnlockAt) {
		chits, err := s.chits.ListByAuthor(ctx, c.ID, partnerID)
		if err != nil {
			return nil, err
		}
		// recount from the chits themselves once they are visible
		st.TotalChits, st.ReadChits = len(chits), 0
		for _, ch := range chits {
			st.EmotionCounts[ch.Emotion]++
			if ch.IsRead {
				st.ReadChits++
			}
		}
	}

	st.UnreadChits = st.TotalChits - st.ReadChits
	if st.UnreadChits < 0 {
		st.UnreadChits = 0
	}
	if st.TotalChits > 0 {
		st.Progress = float64(st.ReadChits) / float64(st.TotalChits) * 100
	}
	return st, nil
}

// ChitHistory returns the partner chits of every unlocked chest of readerID,
// most recently unlocked first. Chests without partner chits are skipped.
func (s *Service) ChitHistory(ctx context.Context, readerID string) ([]*ChestChits, error) {
	chests, err := s.chests.ListByOwner(ctx, readerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []*ChestChits
	for _, c := range chests {
		if !timegate.IsUnlockable(now, c.UnlockAt) {
			continue
		}
		partnerID := c.PartnerOf(readerID)
		chits, err := s.chits.ListByAuthor(ctx, c.ID, partnerID)
		if err != nil {
			return nil, err
		}
		if len(chits) == 0 {
			continue
		}
		out = append(out, &ChestChits{Chest: c, PartnerID: partnerID, Chits: chits})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Chest.UnlockAt.After(out[j].Chest.UnlockAt)
	})
	return out, nil
}
