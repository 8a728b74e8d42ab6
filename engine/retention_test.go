package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/comp-calculator/engine"
)

const tolerance = 1e-9

// =============================================================================
// ATTAINMENT CURVE
// =============================================================================

func TestCalculateRetention_ZeroChurnEarnsBonus(t *testing.T) {
	// GIVEN: no churn on a 1M book
	// WHEN: scoring against an 80-90% band
	// THEN: retention is exactly 1 and attainment hits the 150% bonus
	res, err := engine.CalculateRetention(engine.RetentionInput{
		BookARR:            1_000_000,
		ChurnARR:           0,
		MinRetentionTarget: 0.80,
		MaxRetentionTarget: 0.90,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.RetentionRate)
	assert.Equal(t, 1.5, res.Attainment)
}

func TestCalculateRetention_NearTotalChurnScoresZero(t *testing.T) {
	res, err := engine.CalculateRetention(engine.RetentionInput{
		BookARR:            1_000_000,
		ChurnARR:           999_999,
		MinRetentionTarget: 0.10,
		MaxRetentionTarget: 0.20,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, res.RetentionRate, tolerance)
	assert.Equal(t, 0.0, res.Attainment)
}

func TestScoreAttainment_Segments(t *testing.T) {
	lo, hi := 0.80, 0.90

	// At or below min
	assert.Equal(t, 0.0, engine.ScoreAttainment(0.5, lo, hi))
	assert.Equal(t, 0.0, engine.ScoreAttainment(0.80, lo, hi))

	// Linear between min and max
	assert.InDelta(t, 0.5, engine.ScoreAttainment(0.85, lo, hi), tolerance)
	assert.InDelta(t, 1.0, engine.ScoreAttainment(0.90, lo, hi), tolerance)

	// Bonus territory between max and 1
	assert.InDelta(t, 1.25, engine.ScoreAttainment(0.95, lo, hi), tolerance)
	assert.Less(t, engine.ScoreAttainment(0.999999, lo, hi), 1.5)

	// Exactly 1 is the discontinuous bonus
	assert.Equal(t, 1.5, engine.ScoreAttainment(1, lo, hi))
}

func TestScoreAttainment_AboveOneFallsThrough(t *testing.T) {
	assert.Equal(t, 0.0, engine.ScoreAttainment(1.2, 0.8, 0.9))
	assert.Equal(t, 0.0, engine.ScoreAttainment(math.Inf(1), 0.8, 0.9))
	assert.Equal(t, 0.0, engine.ScoreAttainment(math.NaN(), 0.8, 0.9))
}

func TestScoreAttainment_StaysInRange(t *testing.T) {
	for r := 0.0; r <= 1.0; r += 0.001 {
		a := engine.ScoreAttainment(r, 0.7, 0.9)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.LessOrEqual(t, a, 1.5)
	}
}

// =============================================================================
// COMPOUNDING AND BUDGETS
// =============================================================================

func TestAnnualRetention_CompoundsTwelveTimes(t *testing.T) {
	got := engine.AnnualRetention(100, 1)
	assert.InDelta(t, math.Pow(0.99, 12), got, tolerance)

	assert.Equal(t, 0.0, engine.AnnualRetention(0, 0))
	assert.Equal(t, 0.0, engine.AnnualRetention(0, 50))
}

func TestChurnBudgets(t *testing.T) {
	// GIVEN: a 1.2M book and an 80-90% band
	maxAllowed, target := engine.ChurnBudgets(1_200_000, 0.80, 0.90)

	// THEN: compounding the budget back recovers the band edge
	assert.InDelta(t, 0.80, math.Pow((1_200_000-maxAllowed)/1_200_000, 12), tolerance)
	assert.InDelta(t, 0.90, math.Pow((1_200_000-target)/1_200_000, 12), tolerance)

	// AND: the lower target allows more churn than the upper one
	assert.Greater(t, maxAllowed, target)
}

func TestChurnBudgets_ZeroTargetAllowsWholeBook(t *testing.T) {
	maxAllowed, target := engine.ChurnBudgets(500, 0, 1)
	assert.Equal(t, 500.0, maxAllowed)
	assert.Equal(t, 0.0, target)
}

func TestComputeRetention_ZeroBook(t *testing.T) {
	res := engine.ComputeRetention(engine.RetentionInput{
		BookARR:            0,
		ChurnARR:           0,
		MinRetentionTarget: 0.8,
		MaxRetentionTarget: 0.9,
	})
	assert.Equal(t, engine.RetentionResult{}, res)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateRetention_ChurnEqualsBook(t *testing.T) {
	err := engine.ValidateRetention(engine.RetentionInput{
		BookARR:            100,
		ChurnARR:           100,
		MinRetentionTarget: 0.8,
		MaxRetentionTarget: 0.9,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrChurnExceedsBook)
	assert.NotErrorIs(t, err, engine.ErrInvertedTargetBand)

	var churn *engine.ChurnExceedsBookError
	require.ErrorAs(t, err, &churn)
	assert.Equal(t, 100.0, churn.BookARR)
}

func TestValidateRetention_InvertedBand(t *testing.T) {
	err := engine.ValidateRetention(engine.RetentionInput{
		BookARR:            100,
		ChurnARR:           10,
		MinRetentionTarget: 0.9,
		MaxRetentionTarget: 0.5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvertedTargetBand)
	assert.NotErrorIs(t, err, engine.ErrChurnExceedsBook)
}

func TestValidateRetention_ReportsBothViolations(t *testing.T) {
	// GIVEN: churn above book AND an inverted band
	// WHEN: validating
	// THEN: both violations are reported, no short-circuit
	_, err := engine.CalculateRetention(engine.RetentionInput{
		BookARR:            100,
		ChurnARR:           200,
		MinRetentionTarget: 0.9,
		MaxRetentionTarget: 0.5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrChurnExceedsBook)
	assert.ErrorIs(t, err, engine.ErrInvertedTargetBand)
	assert.Len(t, engine.Violations(err), 2)
	assert.True(t, engine.IsClientError(err))
}

func TestValidateRetention_UnsetInputsPass(t *testing.T) {
	// A freshly opened calculator has every field at zero.
	assert.NoError(t, engine.ValidateRetention(engine.RetentionInput{}))
}

func TestValidateRetention_EqualBandNonZero(t *testing.T) {
	err := engine.ValidateRetention(engine.RetentionInput{
		BookARR:            100,
		MinRetentionTarget: 0.8,
		MaxRetentionTarget: 0.8,
	})
	assert.ErrorIs(t, err, engine.ErrInvertedTargetBand)
}

func TestValidateRetention_TargetOutOfRange(t *testing.T) {
	// GIVEN: targets outside [0, 1] on both ends
	err := engine.ValidateRetention(engine.RetentionInput{
		BookARR:            1000,
		ChurnARR:           10,
		MinRetentionTarget: -0.5,
		MaxRetentionTarget: 1.2,
	})

	// THEN: each target is reported and classified as a client error
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTargetOutOfRange)
	assert.True(t, engine.IsClientError(err))
	require.Len(t, engine.Violations(err), 2)

	var target *engine.TargetOutOfRangeError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "minimum", target.Target)
	assert.Equal(t, -0.5, target.Value)

	_, err = engine.CalculateRetention(engine.RetentionInput{
		BookARR:            1000,
		MinRetentionTarget: math.NaN(),
		MaxRetentionTarget: 0.9,
	})
	assert.ErrorIs(t, err, engine.ErrTargetOutOfRange)
}

func TestViolations_Nil(t *testing.T) {
	assert.Nil(t, engine.Violations(nil))
}
