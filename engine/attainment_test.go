package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/comp-calculator/engine"
)

// =============================================================================
// PERCENTAGE TESTS
// =============================================================================

func TestComputeAttainment_TargetEqualsActual(t *testing.T) {
	for _, target := range []float64{0.001, 1, 3, 7.5, 100, 123456.789, 1e9} {
		pct, err := engine.ComputeAttainment(target, target)
		require.NoError(t, err)
		assert.Equal(t, 100.0, pct, "target %v", target)
	}
}

func TestComputeAttainment_RoundsToOneDecimal(t *testing.T) {
	pct, err := engine.ComputeAttainment(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 33.3, pct)

	pct, err = engine.ComputeAttainment(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 66.7, pct)

	pct, err = engine.ComputeAttainment(45, 60)
	require.NoError(t, err)
	assert.Equal(t, 75.0, pct)
}

func TestComputeAttainment_CappedAt100(t *testing.T) {
	// GIVEN: actual above target
	// THEN: percentage is exactly 100 and nothing remains
	cases := []struct{ actual, target float64 }{
		{101, 100},
		{2, 1},
		{1e9, 5},
	}
	for _, c := range cases {
		pct, err := engine.ComputeAttainment(c.actual, c.target)
		require.NoError(t, err)
		assert.Equal(t, 100.0, pct)
		assert.Equal(t, 0.0, engine.ComputeRemaining(c.actual, c.target))
	}
}

func TestComputeAttainment_NonPositiveTarget(t *testing.T) {
	for _, target := range []float64{0, -1, -0.5} {
		_, err := engine.ComputeAttainment(10, target)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrInvalidTarget)

		var invalid *engine.InvalidTargetError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, target, invalid.Target)
		assert.True(t, engine.IsClientError(err))
	}
}

// =============================================================================
// REMAINING TESTS
// =============================================================================

func TestComputeRemaining(t *testing.T) {
	assert.Equal(t, 40.0, engine.ComputeRemaining(60, 100))
	assert.Equal(t, 0.0, engine.ComputeRemaining(100, 100))
	assert.Equal(t, 0.0, engine.ComputeRemaining(150, 100))
	assert.Equal(t, 110.0, engine.ComputeRemaining(-10, 100))
}

func TestComputeRemaining_NeverNegative(t *testing.T) {
	values := []float64{-1e6, -1, 0, 0.5, 1, 99, 100, 1e6}
	for _, a := range values {
		for _, b := range values {
			assert.GreaterOrEqual(t, engine.ComputeRemaining(a, b), 0.0, "actual=%v target=%v", a, b)
		}
	}
}

// =============================================================================
// LEVEL TESTS
// =============================================================================

func TestClassifyLevel(t *testing.T) {
	cases := []struct {
		pct  float64
		want engine.Level
	}{
		{150, engine.LevelAchieved},
		{100, engine.LevelAchieved},
		{99.9, engine.LevelOutstanding},
		{90, engine.LevelOutstanding},
		{89.9, engine.LevelOnTrack},
		{75, engine.LevelOnTrack},
		{74.9, engine.LevelProgressing},
		{50, engine.LevelProgressing},
		{49.9, engine.LevelStarting},
		{25, engine.LevelStarting},
		{24.9, engine.LevelInitial},
		{0, engine.LevelInitial},
		{-10, engine.LevelInitial},
		{math.Inf(-1), engine.LevelInitial},
		{math.NaN(), engine.LevelInitial},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, engine.ClassifyLevel(c.pct), "percentage %v", c.pct)
	}
}

// =============================================================================
// EVALUATE
// =============================================================================

func TestEvaluate(t *testing.T) {
	res, err := engine.Evaluate(engine.AttainmentInput{Actual: 80, Target: 100})
	require.NoError(t, err)
	assert.Equal(t, engine.AttainmentResult{
		Actual:     80,
		Target:     100,
		Percentage: 80,
		Remaining:  20,
		Level:      engine.LevelOnTrack,
	}, res)

	_, err = engine.Evaluate(engine.AttainmentInput{Actual: 80, Target: 0})
	assert.ErrorIs(t, err, engine.ErrInvalidTarget)
}

func TestValidateAttainment(t *testing.T) {
	assert.NoError(t, engine.ValidateAttainment(engine.AttainmentInput{Actual: 0, Target: 1}))

	err := engine.ValidateAttainment(engine.AttainmentInput{Actual: -1, Target: 0})
	assert.ErrorIs(t, err, engine.ErrNegativeActual)
	assert.ErrorIs(t, err, engine.ErrInvalidTarget)
	assert.Len(t, engine.Violations(err), 2)
	assert.True(t, engine.IsClientError(err))
}
