// Package service implements the chit chest domain: pairing two identities,
// running chests through their lifecycle, and writing and reading chits.
//
// Every method takes the acting identity explicitly; authentication happens in
// the transport layer.
package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/lock"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/timegate"
)

const (
	MinChestDays  = 1
	MaxChestDays  = 30
	MaxChitLength = 1000
)

// Deps wires a Service. Stores and Locker are required; the rest have defaults.
type Deps struct {
	Identities IdentityStore
	Pairings   PairingStore
	Chests     ChestStore
	Chits      ChitStore
	Counters   CounterStore
	Settings   SettingsStore
	Locker     lock.Locker

	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// DayLength is the wall-clock length of one chest duration unit.
	DayLength time.Duration
}

type Service struct {
	identities IdentityStore
	pairings   PairingStore
	chests     ChestStore
	chits      ChitStore
	counters   CounterStore
	settings   SettingsStore
	locker     lock.Locker

	metrics   *metrics.Metrics
	log       zerolog.Logger
	clock     func() time.Time
	dayLength time.Duration
}

func New(d Deps) *Service {
	s := &Service{
		identities: d.Identities,
		pairings:   d.Pairings,
		chests:     d.Chests,
		chits:      d.Chits,
		counters:   d.Counters,
		settings:   d.Settings,
		locker:     d.Locker,
		metrics:    d.Metrics,
		log:        d.Logger.With().Str("component", "service").Logger(),
		clock:      d.Clock,
		dayLength:  d.DayLength,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.dayLength <= 0 {
		s.dayLength = timegate.Day
	}
	return s
}

// now is truncated to milliseconds, the precision MongoDB stores, so values
// written and read back compare equal in CAS filters.
func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// DayLength returns the configured duration unit.
func (s *Service) DayLength() time.Duration { return s.dayLength }

// DaysRemaining returns the whole duration units left before c unlocks.
func (s *Service) DaysRemaining(c *data.Chest) int {
	return timegate.Remaining(s.now(), c.UnlockAt, s.dayLength)
}

// reject counts a domain rejection and returns err unchanged.
func (s *Service) reject(err *Error) error {
	s.metrics.Rejected(err.Code)
	return err
}

func (s *Service) identity(ctx context.Context, id string) (*data.Identity, error) {
	ident, err := s.identities.GetByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, s.reject(ErrIdentityNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load identity")
	}
	return ident, nil
}

func (s *Service) chest(ctx context.Context, id string) (*data.Chest, error) {
	c, err := s.chests.GetByID(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return nil, s.reject(ErrChestNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load chest")
	}
	return c, nil
}

// memberChest loads a chest and requires callerID to own it.
func (s *Service) memberChest(ctx context.Context, chestID, callerID string) (*data.Chest, error) {
	c, err := s.chest(ctx, chestID)
	if err != nil {
		return nil, err
	}
	if !c.HasOwner(callerID) {
		return nil, s.reject(ErrUnauthorized)
	}
	return c, nil
}

func pairLockKey(pairKey string) string { return "pair:" + pairKey }
func identityLockKey(id string) string { return "identity:" + id }
func chestLockKey(chestID string) string { return "chest:" + chestID }
func settingsLockKey(ownerID string) string { return "settings:" + ownerID }
