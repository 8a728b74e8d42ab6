/*
errors.go - Validation error types for the calculation engine

PURPOSE:
  All engine error types in one place. Engine functions are pure, so the only
  failures are input validation failures; arithmetic never fails once inputs
  pass validation.

ERROR CATEGORIES:
  1. Attainment errors - non-positive target, negative actual (form input)
  2. Retention errors  - churn at or above book, target outside [0,1],
                         inverted target band

USAGE:
  Callers match on sentinels and read details from the structured type:

    if errors.Is(err, engine.ErrChurnExceedsBook) { ... }

    var band *engine.InvertedTargetBandError
    if errors.As(err, &band) { ... band.Min, band.Max ... }

  ValidateRetention joins every violation, so both checks can match the
  same returned error.

SEE ALSO:
  - attainment.go: Returns InvalidTargetError
  - retention.go: Returns ChurnExceedsBookError and InvertedTargetBandError
  - roster/errors.go: Batch parse errors
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidTarget is returned when an attainment target is zero or negative.
	ErrInvalidTarget = errors.New("target must be greater than zero")

	// ErrNegativeActual is returned by ValidateAttainment for an actual below zero.
	ErrNegativeActual = errors.New("actual cannot be negative")

	// ErrChurnExceedsBook is returned when churn ARR is equal to or above book ARR.
	ErrChurnExceedsBook = errors.New("churn ARR cannot exceed or equal book start ARR")

	// ErrTargetOutOfRange is returned when a retention target is not a
	// fraction in [0, 1].
	ErrTargetOutOfRange = errors.New("retention target must be between 0 and 1")

	// ErrInvertedTargetBand is returned when the minimum retention target is not
	// strictly below the maximum retention target.
	ErrInvertedTargetBand = errors.New("minimum retention target must be below maximum retention target")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTargetError reports the rejected target value.
type InvalidTargetError struct {
	Target float64
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %v: %v", e.Target, ErrInvalidTarget)
}

func (e *InvalidTargetError) Unwrap() error {
	return ErrInvalidTarget
}

// ChurnExceedsBookError reports the offending book/churn pair.
type ChurnExceedsBookError struct {
	BookARR  float64
	ChurnARR float64
}

func (e *ChurnExceedsBookError) Error() string {
	return fmt.Sprintf("churn ARR %v >= book start ARR %v", e.ChurnARR, e.BookARR)
}

func (e *ChurnExceedsBookError) Unwrap() error {
	return ErrChurnExceedsBook
}

// TargetOutOfRangeError names the retention target outside [0, 1].
type TargetOutOfRangeError struct {
	Target string // "minimum" or "maximum"
	Value  float64
}

func (e *TargetOutOfRangeError) Error() string {
	return fmt.Sprintf("%s retention target %v: %v", e.Target, e.Value, ErrTargetOutOfRange)
}

func (e *TargetOutOfRangeError) Unwrap() error {
	return ErrTargetOutOfRange
}

// InvertedTargetBandError reports the offending retention target band.
type InvertedTargetBandError struct {
	Min float64
	Max float64
}

func (e *InvertedTargetBandError) Error() string {
	return fmt.Sprintf("minimum retention target %v >= maximum retention target %v", e.Min, e.Max)
}

func (e *InvertedTargetBandError) Unwrap() error {
	return ErrInvertedTargetBand
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrNegativeActual) ||
		errors.Is(err, ErrChurnExceedsBook) ||
		errors.Is(err, ErrTargetOutOfRange) ||
		errors.Is(err, ErrInvertedTargetBand)
}

// Violations flattens a joined validation error into its individual parts,
// preserving order. A nil error yields nil.
func Violations(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Violations(e)...)
	}
	return out
}
