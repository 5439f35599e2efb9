package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
)

// PairingStatus is the pairing state of one identity. Partner is nil when the
// identity is unpaired.
type PairingStatus struct {
	IsPaired bool
	Partner  *data.Identity
	PairedAt time.Time
}

// Pair links requesterID with the identity named partnerUsername.
//
// A pairing touches three documents: the pairing record and both identities.
// The record is written first as an uncommitted intent, then each identity is
// set with a compare-and-set, then the record is committed. An attempt that
// stops halfway leaves an intent that the next Pair, PairingStatus or
// RecoverPairings call for either side finishes with the original pairedAt.
func (s *Service) Pair(ctx context.Context, requesterID, partnerUsername string) (*data.PairingRecord, error) {
	requester, err := s.identity(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if requester.PairedID != "" {
		partner, err := s.identity(ctx, requester.PairedID)
		if err != nil {
			return nil, err
		}
		if partner.PairedID != requester.ID {
			rec, resumed, err := s.resume(ctx, requester.ID, partner.ID)
			if err != nil {
				return nil, err
			}
			if resumed && partner.Username == normalize.Username(partnerUsername) {
				return rec, nil
			}
			if !resumed {
				// an abandoned intent reverts the requester's side
				if requester, err = s.identity(ctx, requester.ID); err != nil {
					return nil, err
				}
			}
		}
		if requester.PairedID != "" {
			return nil, s.reject(ErrAlreadyPaired)
		}
	}

	partner, err := s.identities.GetByUsername(ctx, partnerUsername)
	if errors.Is(err, data.ErrNotFound) {
		return nil, s.reject(ErrUsernameNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "load partner")
	}
	if partner.ID == requester.ID {
		return nil, s.reject(ErrSelfPair)
	}
	if partner.PairedID != "" {
		if partner.PairedID == requester.ID {
			if rec, resumed, err := s.resume(ctx, requester.ID, partner.ID); err != nil || resumed {
				return rec, err
			}
		}
		return nil, s.reject(ErrPartnerAlreadyPaired)
	}
	if partner.Gender == requester.Gender {
		return nil, s.reject(ErrGenderMismatch)
	}

	historical, err := s.pairings.HasHistorical(ctx, requester.ID, partner.ID)
	if err != nil {
		return nil, err
	}
	if historical {
		return nil, s.reject(ErrHistoricalRepairBlocked)
	}

	release, err := s.locker.Lock(ctx, identityLockKey(requester.ID), identityLockKey(partner.ID))
	if err != nil {
		return nil, errors.Wrap(err, "lock identities")
	}
	defer release()

	rec := &data.PairingRecord{
		ID:       data.PairKey(requester.ID, partner.ID),
		IDA:      requester.ID,
		IDB:      partner.ID,
		PairedAt: s.now(),
	}
	if err := s.pairings.InsertIntent(ctx, rec); err != nil {
		if !errors.Is(err, data.ErrDuplicate) {
			return nil, err
		}
		existing, err := s.pairings.Get(ctx, rec.ID)
		if err != nil {
			return nil, errors.Wrap(err, "load pairing record")
		}
		switch {
		case existing.Historical:
			return nil, s.reject(ErrHistoricalRepairBlocked)
		case existing.Committed:
			return nil, s.reject(ErrAlreadyPaired)
		}
		rec = existing
	}

	return s.commit(ctx, rec, requester.ID)
}

// PairingStatus reports whether id is paired. Only a pairing both identities
// agree on counts; a half-written one is finished first when its intent exists
// and reported as unpaired otherwise.
func (s *Service) PairingStatus(ctx context.Context, id string) (*PairingStatus, error) {
	ident, err := s.identity(ctx, id)
	if err != nil {
		return nil, err
	}
	if ident.PairedID == "" {
		return &PairingStatus{}, nil
	}

	partner, err := s.identity(ctx, ident.PairedID)
	if err != nil {
		return nil, err
	}
	if partner.PairedID != ident.ID {
		if _, _, err := s.resume(ctx, ident.ID, partner.ID); err != nil {
			return nil, err
		}
		// another attempt may have finished or rolled back while we waited
		if ident, err = s.identity(ctx, id); err != nil {
			return nil, err
		}
		if ident.PairedID == "" {
			return &PairingStatus{}, nil
		}
		if partner, err = s.identity(ctx, ident.PairedID); err != nil {
			return nil, err
		}
		if partner.PairedID != ident.ID {
			return &PairingStatus{}, nil
		}
	}

	st := &PairingStatus{IsPaired: true, Partner: publicIdentity(partner)}
	if ident.PairedAt != nil {
		st.PairedAt = *ident.PairedAt
	}
	return st, nil
}

// Partner returns the identity id is paired with, or ErrNotPaired.
func (s *Service) Partner(ctx context.Context, id string) (*data.Identity, error) {
	st, err := s.PairingStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsPaired {
		return nil, s.reject(ErrNotPaired.WithMessage("you are not paired with anyone"))
	}
	return st.Partner, nil
}

// RecoverPairings finishes or rolls back every pairing intent left behind by an
// interrupted attempt. It returns how many intents were committed.
func (s *Service) RecoverPairings(ctx context.Context) (int, error) {
	recs, err := s.pairings.ListUncommitted(ctx)
	if err != nil {
		return 0, err
	}

	committed := 0
	for _, rec := range recs {
		_, ok, err := s.resume(ctx, rec.IDA, rec.IDB)
		if err != nil {
			s.log.Warn().Err(err).Str("pair_key", rec.ID).Msg("pairing recovery failed")
			continue
		}
		if ok {
			committed++
		}
	}
	return committed, nil
}

// resume finishes the uncommitted intent for a and b, if there is one. It
// reports whether the pairing is committed afterwards.
func (s *Service) resume(ctx context.Context, a, b string) (*data.PairingRecord, bool, error) {
	release, err := s.locker.Lock(ctx, identityLockKey(a), identityLockKey(b))
	if err != nil {
		return nil, false, errors.Wrap(err, "lock identities")
	}
	defer release()

	rec, err := s.pairings.Get(ctx, data.PairKey(a, b))
	if errors.Is(err, data.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "load pairing record")
	}
	if rec.Historical || rec.Committed {
		return nil, false, nil
	}

	rec, err = s.commit(ctx, rec, a)
	if err != nil {
		var derr *Error
		if errors.As(err, &derr) {
			// a side was taken by someone else; the intent has been abandoned
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec, true, nil
}

// commit runs the identity writes of rec and marks it committed. Callers hold
// the identity locks of both sides. Infrastructure errors leave the intent in
// place for a later resume; a lost compare-and-set abandons it.
func (s *Service) commit(ctx context.Context, rec *data.PairingRecord, requesterID string) (*data.PairingRecord, error) {
	sideErr := func(id string) *Error {
		if id == requesterID {
			return ErrAlreadyPaired
		}
		return ErrPartnerAlreadyPaired
	}

	ok, err := s.identities.CompareAndSetPartner(ctx, rec.IDA, rec.IDB, rec.PairedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.abandon(ctx, rec, false)
		return nil, s.reject(sideErr(rec.IDA))
	}

	ok, err = s.identities.CompareAndSetPartner(ctx, rec.IDB, rec.IDA, rec.PairedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.abandon(ctx, rec, true)
		return nil, s.reject(sideErr(rec.IDB))
	}

	if err := s.pairings.MarkCommitted(ctx, rec.ID); err != nil {
		return nil, errors.Wrap(err, "commit pairing")
	}
	rec.Committed = true

	s.metrics.PairingCommitted()
	s.log.Info().Str("pair_key", rec.ID).Time("paired_at", rec.PairedAt).Msg("pairing committed")
	return rec, nil
}

// abandon reverts the first identity write when clearA is set and drops the
// intent. Failures are logged; the intent stays for RecoverPairings.
func (s *Service) abandon(ctx context.Context, rec *data.PairingRecord, clearA bool) {
	if clearA {
		if _, err := s.identities.ClearPartner(ctx, rec.IDA, rec.IDB, rec.PairedAt); err != nil {
			s.log.Error().Err(err).Str("pair_key", rec.ID).Msg("failed to revert partial pairing")
			return
		}
	}
	if err := s.pairings.DeleteIntent(ctx, rec.ID); err != nil {
		s.log.Error().Err(err).Str("pair_key", rec.ID).Msg("failed to delete pairing intent")
	}
}

// publicIdentity strips the password hash.
func publicIdentity(ident *data.Identity) *data.Identity {
	c := *ident
	c.Password = ""
	return &c
}
