/*
Package engine provides the compensation calculation formulas.

PURPOSE:
  Pure, deterministic functions behind every calculator page: quota
  attainment against a target, compounded ARR retention scored against a
  target band, and the split of variable compensation into quota buckets.
  Nothing in this package performs I/O, keeps state, or logs.

KEY CONCEPTS IN THIS FILE (attainment.go):
  - Percentage: actual/target as a percent, one decimal, capped at 100
  - Remaining:  how much is left to reach target, never negative
  - Level:      one of six ordered tiers derived from the percentage

PRECISION:
  Retention and attainment math uses float64 because it relies on
  fractional powers. Quota mix amounts are money and use decimal.Decimal.
  Rounding for display happens only in the format package.

SEE ALSO:
  - retention.go: Retention rate, churn budgets and band scoring
  - quotamix.go: Variable compensation breakdown
  - errors.go: Validation errors
*/
package engine

import (
	"errors"
	"fmt"
	"math"
)

// =============================================================================
// ATTAINMENT LEVELS
// =============================================================================

// Level is an attainment tier, ordered from Initial (lowest) to Achieved.
type Level string

const (
	LevelAchieved    Level = "Achieved"
	LevelOutstanding Level = "Outstanding"
	LevelOnTrack     Level = "On Track"
	LevelProgressing Level = "Progressing"
	LevelStarting    Level = "Starting"
	LevelInitial     Level = "Initial"
)

// levelThresholds is evaluated top-down; the first threshold the percentage
// reaches wins.
var levelThresholds = []struct {
	min   float64
	level Level
}{
	{100, LevelAchieved},
	{90, LevelOutstanding},
	{75, LevelOnTrack},
	{50, LevelProgressing},
	{25, LevelStarting},
}

// =============================================================================
// TYPES
// =============================================================================

// AttainmentInput is an actual/target pair. Target must be positive.
type AttainmentInput struct {
	Actual float64 `json:"actual"`
	Target float64 `json:"target"`
}

// AttainmentResult is what the attainment page displays.
type AttainmentResult struct {
	Actual     float64 `json:"actual"`
	Target     float64 `json:"target"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
	Level      Level   `json:"level"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ComputeAttainment returns actual/target as a percentage rounded to one
// decimal place and capped at 100.
func ComputeAttainment(actual, target float64) (float64, error) {
	if target <= 0 {
		return 0, &InvalidTargetError{Target: target}
	}
	pct := roundHalfUp(actual/target*1000) / 10
	return math.Min(pct, 100), nil
}

// ComputeRemaining returns how far actual is below target, floored at zero.
func ComputeRemaining(actual, target float64) float64 {
	return math.Max(target-actual, 0)
}

// ClassifyLevel maps a percentage to its tier. Any value below 25,
// including negatives and NaN, is Initial.
func ClassifyLevel(percentage float64) Level {
	for _, t := range levelThresholds {
		if percentage >= t.min {
			return t.level
		}
	}
	return LevelInitial
}

// ValidateAttainment applies the form's input rules: the target must be
// positive and the actual non-negative. ComputeAttainment itself accepts a
// negative actual.
func ValidateAttainment(in AttainmentInput) error {
	var errs []error
	if in.Actual < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrNegativeActual, in.Actual))
	}
	if in.Target <= 0 {
		errs = append(errs, &InvalidTargetError{Target: in.Target})
	}
	return errors.Join(errs...)
}

// Evaluate computes the full attainment result for one actual/target pair.
func Evaluate(in AttainmentInput) (AttainmentResult, error) {
	pct, err := ComputeAttainment(in.Actual, in.Target)
	if err != nil {
		return AttainmentResult{}, err
	}
	return AttainmentResult{
		Actual:     in.Actual,
		Target:     in.Target,
		Percentage: pct,
		Remaining:  ComputeRemaining(in.Actual, in.Target),
		Level:      ClassifyLevel(pct),
	}, nil
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
