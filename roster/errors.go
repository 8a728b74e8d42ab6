package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField is returned when a row lacks a required column value.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidNumber is returned when a required numeric cell does not parse.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrEmptyRoster is returned when an upload has a header but no data rows.
	ErrEmptyRoster = errors.New("the uploaded file does not contain any data")

	// ErrRosterNotFound is returned by repositories for unknown roster ids.
	ErrRosterNotFound = errors.New("roster not found")
)

// MissingFieldError names the row (1-based, header excluded) and every
// required field it is missing.
type MissingFieldError struct {
	Row    int
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("row %d: %v: %s", e.Row, ErrMissingField, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// InvalidNumberError names a required cell whose value is not a finite number.
type InvalidNumberError struct {
	Row   int
	Field string
	Value string
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("row %d: %v in %s: %q", e.Row, ErrInvalidNumber, e.Field, e.Value)
}

func (e *InvalidNumberError) Unwrap() error {
	return ErrInvalidNumber
}

// IsClientError returns true if the error is due to a bad upload.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidNumber) ||
		errors.Is(err, ErrEmptyRoster)
}
