package service

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := ErrChestAlreadyActive.WithMessage("an active chest already exists (c1)")

	assert.True(t, errors.Is(err, ErrChestAlreadyActive))
	assert.False(t, errors.Is(err, ErrAlreadyPaired))
	assert.Equal(t, "an active chest already exists (c1)", err.Error())
	assert.Equal(t, "an active chest already exists between you and your partner", ErrChestAlreadyActive.Message)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrInvalidEmotion, KindValidation},
		{errors.Wrap(ErrUnauthorized, "add chit"), KindAuthorization},
		{ErrWrongState, KindState},
		{ErrChitNotFound, KindNotFound},
		{ErrHistoricalRepairBlocked, KindConflict},
		{errors.New("boom"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}
	assert.Equal(t, "chest_locked", CodeOf(errors.Wrap(ErrChestLocked, "open")))
	assert.Equal(t, "", CodeOf(errors.New("boom")))
}
