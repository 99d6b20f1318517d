package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMissingField marks a required field that is absent or empty
	ErrMissingField = errors.New("missing required field")

	// ErrMalformedScalar marks a numeric field that could not be parsed
	ErrMalformedScalar = errors.New("malformed numeric value")

	// ErrAbsentFlag marks a hazard flag that was not supplied at all
	ErrAbsentFlag = errors.New("hazard flag not supplied")

	// ErrNotLinked is returned when a close approach is used before it has been linked to its NEO
	ErrNotLinked = errors.New("close approach is not linked to a near-earth object")

	// ErrAlreadyLinked is returned when an entity is handed to a second catalog
	ErrAlreadyLinked = errors.New("entity is already linked")
)

// ValidationError represents a single field-level data validation outcome
// Recoverable outcomes are collected in Diagnostics, fatal ones are returned as the construction error
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel classifying this error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// Diagnostics holds the recoverable field errors raised while building one entity
type Diagnostics []*ValidationError

// Err joins the diagnostics into one error, or nil when there are none
func (d Diagnostics) Err() error {
	if len(d) == 0 {
		return nil
	}
	errs := make([]error, len(d))
	for i, v := range d {
		errs[i] = v
	}
	return errors.Join(errs...)
}

// Fields lists the names of the fields that produced diagnostics
func (d Diagnostics) Fields() []string {
	fields := make([]string, len(d))
	for i, v := range d {
		fields[i] = v.Field
	}
	return fields
}

func (d Diagnostics) String() string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// UnresolvedLinkError reports a close approach whose designation matches no loaded NEO
type UnresolvedLinkError struct {
	Designation string
	Time        time.Time
}

func (e *UnresolvedLinkError) Error() string {
	return fmt.Sprintf("close approach at %s references unknown designation %q", e.Time.Format("2006-01-02 15:04"), e.Designation)
}

// DuplicateDesignationError reports two NEOs sharing a primary designation
type DuplicateDesignationError struct {
	Designation string
}

func (e *DuplicateDesignationError) Error() string {
	return fmt.Sprintf("duplicate near-earth object designation %q", e.Designation)
}
