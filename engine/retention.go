/*
retention.go - Retention rate, churn budgets and attainment scoring

PURPOSE:
  Scores a quarter of ARR churn against a retention target band.

COMPOUNDING ASSUMPTION:
  The quarter's retention fraction (book - churn) / book is treated as a
  monthly rate and compounded over twelve periods:

    annualRetention = retention ^ 12

  This is deliberate. The churn budgets invert the same formula:

    maxQuarterlyChurnAllowed = book * (1 - minTarget ^ (1/12))
    quarterlyChurnTarget     = book * (1 - maxTarget ^ (1/12))

ATTAINMENT CURVE (first match wins):
  annualRetention == 1          -> 1.5  (perfect retention bonus)
  annualRetention <= min        -> 0
  annualRetention <= max        -> (r - min) / (max - min)          [0, 1]
  annualRetention <  1          -> 1 + (r - max) / (1 - max) * 0.5  [1, 1.5)
  otherwise (r > 1 or NaN)      -> 0

  The bonus at exactly 1 is a discontinuity, not the limit of the last segment.

VALIDATION:
  ValidateRetention reports every violation at once. ComputeRetention skips
  validation and is what the batch processor uses.

SEE ALSO:
  - roster/calculate.go: Batch application
  - errors.go: ChurnExceedsBookError, TargetOutOfRangeError,
    InvertedTargetBandError
*/
package engine

import (
	"errors"
	"math"
)

const (
	// PeriodsPerYear is the compounding exponent applied to the quarter's
	// retention fraction.
	PeriodsPerYear = 12

	// PerfectRetentionAttainment is awarded when annual retention is exactly 1.
	PerfectRetentionAttainment = 1.5

	// bonusSpan is the attainment range between the max target and 100% retention.
	bonusSpan = 0.5
)

// =============================================================================
// TYPES
// =============================================================================

// RetentionInput holds one quarter of ARR figures and the target band.
// Targets are fractions in [0,1], not percents.
type RetentionInput struct {
	BookARR            float64 `json:"book_arr"`
	ChurnARR           float64 `json:"churn_arr"`
	MinRetentionTarget float64 `json:"min_retention_target"`
	MaxRetentionTarget float64 `json:"max_retention_target"`
}

// RetentionResult is the scored quarter. Attainment is a fraction in [0,1.5];
// multiply by 100 for display.
type RetentionResult struct {
	RetentionRate            float64 `json:"retention_rate"`
	Attainment               float64 `json:"attainment"`
	MaxQuarterlyChurnAllowed float64 `json:"max_quarterly_churn_allowed"`
	QuarterlyChurnTarget     float64 `json:"quarterly_churn_target"`
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateRetention checks the boundary invariants and returns every
// violation joined together, or nil.
//
// A zero book skips the churn check, and a band of (0, 0) is treated as
// "not yet entered" rather than inverted.
func ValidateRetention(in RetentionInput) error {
	var errs []error
	if in.BookARR > 0 && in.ChurnARR >= in.BookARR {
		errs = append(errs, &ChurnExceedsBookError{BookARR: in.BookARR, ChurnARR: in.ChurnARR})
	}
	if !inUnitRange(in.MinRetentionTarget) {
		errs = append(errs, &TargetOutOfRangeError{Target: "minimum", Value: in.MinRetentionTarget})
	}
	if !inUnitRange(in.MaxRetentionTarget) {
		errs = append(errs, &TargetOutOfRangeError{Target: "maximum", Value: in.MaxRetentionTarget})
	}
	if bandInverted(in.MinRetentionTarget, in.MaxRetentionTarget) {
		errs = append(errs, &InvertedTargetBandError{Min: in.MinRetentionTarget, Max: in.MaxRetentionTarget})
	}
	return errors.Join(errs...)
}

// inUnitRange is false for NaN.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func bandInverted(minTarget, maxTarget float64) bool {
	if minTarget == 0 && maxTarget == 0 {
		return false
	}
	return minTarget >= maxTarget
}

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateRetention validates the input and, if valid, scores it.
func CalculateRetention(in RetentionInput) (RetentionResult, error) {
	if err := ValidateRetention(in); err != nil {
		return RetentionResult{}, err
	}
	return ComputeRetention(in), nil
}

// ComputeRetention scores the input without validating it.
func ComputeRetention(in RetentionInput) RetentionResult {
	maxAllowed, target := ChurnBudgets(in.BookARR, in.MinRetentionTarget, in.MaxRetentionTarget)
	annual := AnnualRetention(in.BookARR, in.ChurnARR)
	return RetentionResult{
		RetentionRate:            annual,
		Attainment:               ScoreAttainment(annual, in.MinRetentionTarget, in.MaxRetentionTarget),
		MaxQuarterlyChurnAllowed: maxAllowed,
		QuarterlyChurnTarget:     target,
	}
}

// AnnualRetention compounds the quarter's retention fraction to a year.
// A zero book yields zero.
func AnnualRetention(bookARR, churnARR float64) float64 {
	if bookARR == 0 {
		return 0
	}
	retention := (bookARR - churnARR) / bookARR
	return math.Pow(retention, PeriodsPerYear)
}

// ChurnBudgets returns the churn ceilings implied by the lower and upper
// targets. They depend only on book ARR and the band, never on actual churn.
// A zero target yields a budget equal to the whole book; a negative target
// yields NaN.
func ChurnBudgets(bookARR, minTarget, maxTarget float64) (maxQuarterlyChurnAllowed, quarterlyChurnTarget float64) {
	maxQuarterlyChurnAllowed = bookARR * (1 - math.Pow(minTarget, 1.0/PeriodsPerYear))
	quarterlyChurnTarget = bookARR * (1 - math.Pow(maxTarget, 1.0/PeriodsPerYear))
	return maxQuarterlyChurnAllowed, quarterlyChurnTarget
}

// ScoreAttainment places annual retention on the piecewise-linear curve.
func ScoreAttainment(annualRetention, minTarget, maxTarget float64) float64 {
	switch {
	case annualRetention == 1:
		return PerfectRetentionAttainment
	case annualRetention <= minTarget:
		return 0
	case annualRetention <= maxTarget:
		return (annualRetention - minTarget) / (maxTarget - minTarget)
	case annualRetention < 1:
		return 1 + (annualRetention-maxTarget)/(1-maxTarget)*bonusSpan
	default:
		// Above 1 (or NaN) has no segment.
		return 0
	}
}
