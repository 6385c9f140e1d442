package feeds

import (
	"errors"
	"fmt"
)

var (
	ErrDecode       = errors.New("feed decode failed")
	ErrMissingField = errors.New("required field missing")
	ErrDuplicateID  = errors.New("duplicate entity id")
)

// DecodeError is returned when a payload cannot be read as the expected schema.
// It aborts the processing of the whole feed.
type DecodeError struct {
	Feed string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decoding %s", e.Feed)
	}
	return fmt.Sprintf("decoding %s: %s", e.Feed, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

// MissingFieldError is returned when an entity lacks a structural field its kind requires.
type MissingFieldError struct {
	EntityID string
	Field    string
}

func (e *MissingFieldError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("%s is missing", e.Field)
	}
	return fmt.Sprintf("entity %s is missing %s", e.EntityID, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// DuplicateEntityError is returned by the trip flattener when two trip_update
// entities share an id, which leaves the parent join ambiguous.
type DuplicateEntityError struct {
	EntityID string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("trip_update entity %s appears more than once", e.EntityID)
}

func (e *DuplicateEntityError) Unwrap() error {
	return ErrDuplicateID
}
