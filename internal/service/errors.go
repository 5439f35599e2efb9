package service

import "github.com/pkg/errors"

// Kind classifies service errors so transports can map them without knowing
// every individual error.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindValidation is bad caller input; always fixable by the caller.
	KindValidation
	// KindAuthorization is a caller acting on a chest or pair it is not part of.
	KindAuthorization
	// KindState is an operation outside its allowed chest status or write window.
	KindState
	// KindNotFound is an unknown chest, chit, identity or username.
	KindNotFound
	// KindConflict is an operation colliding with existing state.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a domain error. Two errors match under errors.Is when their codes are
// equal, so a sentinel with a more specific message still matches its sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches on Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrInvalidEmotion  = &Error{KindValidation, "invalid_emotion", "invalid emotion selected"}
	ErrEmptyContent    = &Error{KindValidation, "empty_content", "chit content cannot be empty"}
	ErrContentTooLong  = &Error{KindValidation, "content_too_long", "chit content is too long (max 1000 characters)"}
	ErrDurationRange   = &Error{KindValidation, "duration_range", "chest duration must be between 1 and 30 days"}
	ErrInvalidStatus   = &Error{KindValidation, "invalid_status", "unknown chest status"}
	ErrInvalidTheme    = &Error{KindValidation, "invalid_theme", "theme must be light or dark"}
	ErrInvalidGender   = &Error{KindValidation, "invalid_gender", "gender must be male or female"}
	ErrInvalidUsername = &Error{KindValidation, "invalid_username", "username must be 3 to 32 characters"}
	ErrWeakPassword    = &Error{KindValidation, "weak_password", "password must be at least 8 characters"}
	ErrSelfPair        = &Error{KindValidation, "self_pair", "you cannot pair with yourself"}
	ErrGenderMismatch  = &Error{KindValidation, "gender_mismatch", "you can only pair with someone of opposite gender"}

	ErrUnauthorized = &Error{KindAuthorization, "unauthorized", "you are not a member of this chest"}

	ErrWrongState        = &Error{KindState, "wrong_state", "cannot add chit to a chest that is not active"}
	ErrInvalidTransition = &Error{KindState, "invalid_transition", "chest status cannot move that way"}
	ErrChestLocked       = &Error{KindState, "chest_locked", "chest is still locked"}
	ErrNotPaired         = &Error{KindState, "not_paired", "both owners must be paired with each other"}
	ErrChestActiveLocked = &Error{KindState, "chest_active_locked", "there is an active chest; settings can only be changed when no chest is active"}

	ErrIdentityNotFound = &Error{KindNotFound, "identity_not_found", "identity not found"}
	ErrUsernameNotFound = &Error{KindNotFound, "username_not_found", "username not found"}
	ErrChestNotFound    = &Error{KindNotFound, "chest_not_found", "chest not found"}
	ErrChitNotFound     = &Error{KindNotFound, "chit_not_found", "chit not found"}

	ErrAlreadyPaired           = &Error{KindConflict, "already_paired", "you are already paired with someone"}
	ErrPartnerAlreadyPaired    = &Error{KindConflict, "partner_already_paired", "this user is already paired with someone"}
	ErrHistoricalRepairBlocked = &Error{KindConflict, "historical_repair_blocked", "you have been paired with this person before; new pairing not allowed"}
	ErrChestAlreadyActive      = &Error{KindConflict, "chest_already_active", "an active chest already exists between you and your partner"}
	ErrUsernameTaken           = &Error{KindConflict, "username_taken", "username already taken"}
)
