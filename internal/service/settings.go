package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
)

// settingsLockingStatuses are the statuses during which chest settings of the
// pair are frozen.
var settingsLockingStatuses = []data.ChestStatus{data.StatusActive, data.StatusUnlockable}

// SettingsAccess reports whether the chest duration can change right now.
type SettingsAccess struct {
	CanEdit bool
	// Reason is set when CanEdit is false.
	Reason string
}

// Preferences carries the settings that stay editable while a chest is live.
// Nil fields and an empty Theme are left unchanged.
type Preferences struct {
	NotificationsEnabled *bool
	SoundEnabled         *bool
	Theme                string
}

// GetSettings returns the owner's settings, creating the defaults on first use.
func (s *Service) GetSettings(ctx context.Context, ownerID string) (*data.Settings, error) {
	if _, err := s.identity(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.settings.GetOrCreate(ctx, ownerID, s.now())
}

// CanEditSettings reports whether the owner may change the chest duration:
// not while the pair has an active or unlockable chest.
func (s *Service) CanEditSettings(ctx context.Context, ownerID string) (*SettingsAccess, error) {
	ident, err := s.identity(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ok, err := s.settingsEditable(ctx, ident)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &SettingsAccess{Reason: ErrChestActiveLocked.Message}, nil
	}
	return &SettingsAccess{CanEdit: true}, nil
}

// UpdateSettings stores a new chest duration for the owner.
func (s *Service) UpdateSettings(ctx context.Context, ownerID string, durationDays int) (*data.Settings, error) {
	if durationDays < MinChestDays || durationDays > MaxChestDays {
		return nil, s.reject(ErrDurationRange)
	}
	ident, err := s.identity(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// the pair lock keeps a chest from being created between check and save
	keys := []string{settingsLockKey(ownerID)}
	if ident.PairedID != "" {
		keys = append(keys, pairLockKey(data.PairKey(ident.ID, ident.PairedID)))
	}
	release, err := s.locker.Lock(ctx, keys...)
	if err != nil {
		return nil, errors.Wrap(err, "lock settings")
	}
	defer release()

	ok, err := s.settingsEditable(ctx, ident)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.reject(ErrChestActiveLocked)
	}

	now := s.now()
	st, err := s.settings.GetOrCreate(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	st.ChestDurationDays = durationDays
	st.UpdatedAt = now
	if err := s.settings.Save(ctx, st); err != nil {
		return nil, err
	}

	s.log.Info().Str("identity_id", ownerID).Int("duration_days", durationDays).Msg("settings updated")
	return st, nil
}

// UpdatePreferences changes notification, sound and theme preferences. A live
// chest does not freeze them.
func (s *Service) UpdatePreferences(ctx context.Context, ownerID string, p Preferences) (*data.Settings, error) {
	var theme data.Theme
	if p.Theme != "" {
		t, ok := data.ParseTheme(p.Theme)
		if !ok {
			return nil, s.reject(ErrInvalidTheme)
		}
		theme = t
	}
	if _, err := s.identity(ctx, ownerID); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, settingsLockKey(ownerID))
	if err != nil {
		return nil, errors.Wrap(err, "lock settings")
	}
	defer release()

	now := s.now()
	st, err := s.settings.GetOrCreate(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	if p.NotificationsEnabled != nil {
		st.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.SoundEnabled != nil {
		st.SoundEnabled = *p.SoundEnabled
	}
	if theme != "" {
		st.Theme = theme
	}
	st.UpdatedAt = now
	if err := s.settings.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) settingsEditable(ctx context.Context, ident *data.Identity) (bool, error) {
	if ident.PairedID == "" {
		return true, nil
	}
	locked, err := s.chests.ExistsWithStatus(ctx, data.PairKey(ident.ID, ident.PairedID), settingsLockingStatuses...)
	if err != nil {
		return false, err
	}
	return !locked, nil
}
