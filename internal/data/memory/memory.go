// Package memory holds in-process implementations of the data stores. They follow
// the same single-document semantics as the Mongo stores and back unit tests and
// the STORE=memory development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
	"github.com/google/uuid"
)

// Identities is an in-memory identity store.
type Identities struct {
	mu         sync.Mutex
	byID       map[string]*data.Identity
	byUsername map[string]string
}

// NewIdentities returns an empty identity store.
func NewIdentities() *Identities {
	return &Identities{byID: map[string]*data.Identity{}, byUsername: map[string]string{}}
}

func (s *Identities) Create(_ context.Context, username, hashedPassword string, gender data.Gender) (*data.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := normalize.Username(username)
	if _, ok := s.byUsername[name]; ok {
		return nil, data.ErrDuplicate
	}
	ident := &data.Identity{
		ID:        uuid.NewString(),
		Username:  name,
		Password:  hashedPassword,
		Gender:    gender,
		CreatedAt: time.Now().UTC(),
	}
	s.byID[ident.ID] = ident
	s.byUsername[name] = ident.ID
	return copyIdentity(ident), nil
}

func (s *Identities) GetByID(_ context.Context, id string) (*data.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return copyIdentity(ident), nil
}

func (s *Identities) GetByUsername(_ context.Context, username string) (*data.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[normalize.Username(username)]
	if !ok {
		return nil, data.ErrNotFound
	}
	return copyIdentity(s.byID[id]), nil
}

func (s *Identities) CompareAndSetPartner(_ context.Context, id, partnerID string, pairedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	switch {
	case ident.PairedID == "":
	case ident.PairedID == partnerID && ident.PairedAt != nil && ident.PairedAt.Equal(pairedAt):
	default:
		return false, nil
	}
	at := pairedAt
	ident.PairedID = partnerID
	ident.PairedAt = &at
	return true, nil
}

func (s *Identities) ClearPartner(_ context.Context, id, partnerID string, pairedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[id]
	if !ok || ident.PairedID != partnerID || ident.PairedAt == nil || !ident.PairedAt.Equal(pairedAt) {
		return false, nil
	}
	ident.PairedID = ""
	ident.PairedAt = nil
	return true, nil
}

func copyIdentity(i *data.Identity) *data.Identity {
	c := *i
	if i.PairedAt != nil {
		at := *i.PairedAt
		c.PairedAt = &at
	}
	return &c
}

// Pairings is an in-memory pairing history.
type Pairings struct {
	mu   sync.Mutex
	recs map[string]*data.PairingRecord
}

// NewPairings returns an empty pairing history.
func NewPairings() *Pairings {
	return &Pairings{recs: map[string]*data.PairingRecord{}}
}

func (s *Pairings) InsertIntent(_ context.Context, rec *data.PairingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ID]; ok {
		return data.ErrDuplicate
	}
	rec.Committed = false
	c := *rec
	s.recs[rec.ID] = &c
	return nil
}

func (s *Pairings) Get(_ context.Context, key string) (*data.PairingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	if !ok {
		return nil, data.ErrNotFound
	}
	c := *rec
	return &c, nil
}

func (s *Pairings) MarkCommitted(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	if !ok {
		return data.ErrNotFound
	}
	rec.Committed = true
	return nil
}

func (s *Pairings) DeleteIntent(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.recs[key]; ok && !rec.Committed {
		delete(s.recs, key)
	}
	return nil
}

func (s *Pairings) HasHistorical(_ context.Context, a, b string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[data.PairKey(a, b)]
	return ok && rec.Historical, nil
}

func (s *Pairings) ListUncommitted(_ context.Context) ([]*data.PairingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*data.PairingRecord
	for _, rec := range s.recs {
		if !rec.Committed && !rec.Historical {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

// Put stores a record as-is; tests use it to seed history.
func (s *Pairings) Put(rec data.PairingRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = &rec
}

// Chests is an in-memory chest store. Like the unique live_key index, it refuses a
// second live chest for a pair.
type Chests struct {
	mu     sync.Mutex
	chests map[string]*data.Chest
}

// NewChests returns an empty chest store.
func NewChests() *Chests {
	return &Chests{chests: map[string]*data.Chest{}}
}

func (s *Chests) Insert(_ context.Context, c *data.Chest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chests[c.ID]; ok {
		return data.ErrDuplicate
	}
	if c.LiveKey != "" {
		for _, other := range s.chests {
			if other.LiveKey == c.LiveKey {
				return data.ErrDuplicate
			}
		}
	}
	s.chests[c.ID] = copyChest(c)
	return nil
}

func (s *Chests) GetByID(_ context.Context, id string) (*data.Chest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chests[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return copyChest(c), nil
}

func (s *Chests) FindLive(_ context.Context, pairKey string) (*data.Chest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chests {
		if c.LiveKey == pairKey {
			return copyChest(c), nil
		}
	}
	return nil, data.ErrNotFound
}

func (s *Chests) ExistsWithStatus(_ context.Context, pairKey string, statuses ...data.ChestStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chests {
		if c.PairKey != pairKey {
			continue
		}
		for _, st := range statuses {
			if c.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Chests) UpdateStatus(_ context.Context, id string, from, to data.ChestStatus, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chests[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	switch to {
	case data.StatusOpened:
		t := at
		c.OpenedAt = &t
	case data.StatusCompleted:
		t := at
		c.CompletedAt = &t
		c.LiveKey = ""
	}
	return true, nil
}

func (s *Chests) ListByOwner(_ context.Context, ownerID string) ([]*data.Chest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*data.Chest
	for _, c := range s.chests {
		if c.OwnerA == ownerID || c.OwnerB == ownerID {
			out = append(out, copyChest(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Chests) ListDue(_ context.Context, now time.Time, limit int64) ([]*data.Chest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*data.Chest
	for _, c := range s.chests {
		if c.Status == data.StatusActive && !c.UnlockAt.After(now) {
			out = append(out, copyChest(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnlockAt.Before(out[j].UnlockAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns how many chests are stored.
func (s *Chests) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chests)
}

func copyChest(c *data.Chest) *data.Chest {
	cp := *c
	if c.OpenedAt != nil {
		t := *c.OpenedAt
		cp.OpenedAt = &t
	}
	if c.CompletedAt != nil {
		t := *c.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// Chits is an in-memory chit store.
type Chits struct {
	mu    sync.Mutex
	chits map[string]*data.Chit
	seq   map[string]int
	next  int
}

// NewChits returns an empty chit store.
func NewChits() *Chits {
	return &Chits{chits: map[string]*data.Chit{}, seq: map[string]int{}}
}

func (s *Chits) Insert(_ context.Context, c *data.Chit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chits[c.ID]; ok {
		return data.ErrDuplicate
	}
	s.chits[c.ID] = copyChit(c)
	s.next++
	s.seq[c.ID] = s.next
	return nil
}

func (s *Chits) Get(_ context.Context, chestID, chitID string) (*data.Chit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chits[chitID]
	if !ok || c.ChestID != chestID {
		return nil, data.ErrNotFound
	}
	return copyChit(c), nil
}

func (s *Chits) ListByAuthor(_ context.Context, chestID, authorID string) ([]*data.Chit, error) {
	return s.list(func(c *data.Chit) bool { return c.ChestID == chestID && c.AuthorID == authorID }), nil
}

func (s *Chits) ListByChest(_ context.Context, chestID string) ([]*data.Chit, error) {
	return s.list(func(c *data.Chit) bool { return c.ChestID == chestID }), nil
}

func (s *Chits) list(match func(*data.Chit) bool) []*data.Chit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*data.Chit{}
	for _, c := range s.chits {
		if match(c) {
			out = append(out, copyChit(c))
		}
	}
	// insertion order breaks created_at ties
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out
}

func (s *Chits) MarkRead(_ context.Context, chestID, chitID, readerID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chits[chitID]
	if !ok || c.ChestID != chestID || c.IsRead {
		return false, nil
	}
	t := at
	c.IsRead = true
	c.ReadAt = &t
	c.ReadBy = readerID
	return true, nil
}

func (s *Chits) CountUnread(_ context.Context, chestID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.chits {
		if c.ChestID == chestID && !c.IsRead {
			n++
		}
	}
	return n, nil
}

func copyChit(c *data.Chit) *data.Chit {
	cp := *c
	if c.ReadAt != nil {
		t := *c.ReadAt
		cp.ReadAt = &t
	}
	return &cp
}

// Counters is an in-memory chest counter store.
type Counters struct {
	mu       sync.Mutex
	counters map[string]*data.ChestCounters
}

// NewCounters returns an empty counter store.
func NewCounters() *Counters {
	return &Counters{counters: map[string]*data.ChestCounters{}}
}

func (s *Counters) Init(_ context.Context, chestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chestID)
	return nil
}

func (s *Counters) IncChits(_ context.Context, chestID, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(chestID)
	c.ChitCount++
	c.ChitCountByAuthor[authorID]++
	return nil
}

func (s *Counters) IncReads(_ context.Context, chestID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(chestID)
	c.ReadCount++
	c.ReadCountByReader[readerID]++
	return nil
}

func (s *Counters) Get(_ context.Context, chestID string) (*data.ChestCounters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[chestID]
	if !ok {
		return &data.ChestCounters{ChestID: chestID}, nil
	}
	cp := *c
	cp.ChitCountByAuthor = copyCounts(c.ChitCountByAuthor)
	cp.ReadCountByReader = copyCounts(c.ReadCountByReader)
	return &cp, nil
}

func (s *Counters) get(chestID string) *data.ChestCounters {
	c, ok := s.counters[chestID]
	if !ok {
		c = &data.ChestCounters{
			ChestID:           chestID,
			ChitCountByAuthor: map[string]int{},
			ReadCountByReader: map[string]int{},
		}
		s.counters[chestID] = c
	}
	return c
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Settings is an in-memory settings store.
type Settings struct {
	mu       sync.Mutex
	settings map[string]*data.Settings
}

// NewSettings returns an empty settings store.
func NewSettings() *Settings {
	return &Settings{settings: map[string]*data.Settings{}}
}

func (s *Settings) GetOrCreate(_ context.Context, ownerID string, now time.Time) (*data.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[ownerID]
	if !ok {
		st = data.DefaultSettings(ownerID, now)
		s.settings[ownerID] = st
	}
	cp := *st
	return &cp, nil
}

func (s *Settings) Save(_ context.Context, st *data.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.settings[st.OwnerID] = &cp
	return nil
}
