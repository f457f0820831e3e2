package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredField means a draft or patch lacked a required value, or the
	// value could not be parsed. Nothing was mutated.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrNotFound means no record has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousID means a short id prefix matched more than one record.
	ErrAmbiguousID = errors.New("ambiguous id")
)

// FieldError reports which field was rejected and why.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrMissingRequiredField) true for every FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Missing returns a FieldError for an empty required field.
func Missing(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

// Invalid returns a FieldError for a value that failed validation.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
