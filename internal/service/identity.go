package service

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/data"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/normalize"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
)

// Register creates an unpaired identity with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string, gender data.Gender) (*data.Identity, error) {
	name := normalize.Username(username)
	if n := utf8.RuneCountInString(name); n < minUsernameLen || n > maxUsernameLen {
		return nil, s.reject(ErrInvalidUsername)
	}
	if len(password) < minPasswordLen {
		return nil, s.reject(ErrWeakPassword)
	}
	if !gender.Valid() {
		return nil, s.reject(ErrInvalidGender)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	ident, err := s.identities.Create(ctx, name, hashed, gender)
	if errors.Is(err, data.ErrDuplicate) {
		return nil, s.reject(ErrUsernameTaken)
	}
	if err != nil {
		return nil, errors.Wrap(err, "create identity")
	}

	s.log.Info().Str("identity_id", ident.ID).Str("username", ident.Username).Msg("identity registered")
	return ident, nil
}

// Authenticate checks a username and password. Unknown usernames and wrong
// passwords both return ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*data.Identity, error) {
	ident, err := s.identities.GetByUsername(ctx, username)
	if errors.Is(err, data.ErrNotFound) {
		return nil, s.reject(ErrUnauthorized.WithMessage("invalid credentials"))
	}
	if err != nil {
		return nil, errors.Wrap(err, "load identity")
	}
	if err := auth.CheckPassword(ident.Password, password); err != nil {
		return nil, s.reject(ErrUnauthorized.WithMessage("invalid credentials"))
	}
	return ident, nil
}
