package data

import "github.com/pkg/errors"

// Sentinel errors shared by the Mongo and in-memory stores. Services translate
// them into domain errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
