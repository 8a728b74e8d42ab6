package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/comp-calculator/engine"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeQuotaMix(t *testing.T) {
	// GIVEN: 1M total compensation, 80/20 mix, 70/30 quota split
	res := engine.ComputeQuotaMix(engine.QuotaMixInput{
		TotalCompensation:  dec("1000000"),
		VariablePercentage: dec("20"),
		RetentionShare:     dec("0.7"),
		ExpansionShare:     dec("0.3"),
	})

	assertDecimal(t, "800000", res.FixedComponent)
	assertDecimal(t, "200000", res.VariableComponent)
	assertDecimal(t, "50000", res.QuarterlyVariable)
	assertDecimal(t, "35000", res.QuarterlyRetentionBucket)
	assertDecimal(t, "15000", res.QuarterlyExpansionBucket)
}

func TestComputeQuotaMix_KeepsFullPrecision(t *testing.T) {
	res := engine.ComputeQuotaMix(engine.QuotaMixInput{
		TotalCompensation:  dec("1234567"),
		VariablePercentage: dec("17.5"),
		RetentionShare:     dec("0.65"),
		ExpansionShare:     dec("0.35"),
	})

	assertDecimal(t, "216049.225", res.VariableComponent)
	assertDecimal(t, "54012.30625", res.QuarterlyVariable)
	assertDecimal(t, "35107.9990625", res.QuarterlyRetentionBucket)
	assertDecimal(t, "18904.3071875", res.QuarterlyExpansionBucket)
}

func TestComputeQuotaMix_SharesNotNormalized(t *testing.T) {
	// Shares that do not sum to 1 are applied as given.
	res := engine.ComputeQuotaMix(engine.QuotaMixInput{
		TotalCompensation:  dec("400"),
		VariablePercentage: dec("100"),
		RetentionShare:     dec("0.5"),
		ExpansionShare:     dec("0.9"),
	})
	assertDecimal(t, "50", res.QuarterlyRetentionBucket)
	assertDecimal(t, "90", res.QuarterlyExpansionBucket)
}

func TestComputeQuotaMix_Zero(t *testing.T) {
	res := engine.ComputeQuotaMix(engine.QuotaMixInput{
		TotalCompensation:  decimal.Zero,
		VariablePercentage: dec("20"),
		RetentionShare:     dec("0.7"),
		ExpansionShare:     dec("0.3"),
	})
	assert.True(t, res.VariableComponent.IsZero())
	assert.True(t, res.QuarterlyRetentionBucket.IsZero())
}
