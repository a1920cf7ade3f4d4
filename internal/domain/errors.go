package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrMissingInput = errors.New("missing input")
	// ErrEventConflict: an event id is already stored for a different entity or payload.
	ErrEventConflict = errors.New("event conflicts with stored event")
)

// MissingInputError names a raw collection that was never supplied.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string { return "missing input: " + e.Field }

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }
