package factory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/comp-calculator/engine"
)

func TestBuild_Presets(t *testing.T) {
	// GIVEN: the default form with a CTC filled in
	cfg := DefaultQuotaConfig()
	cfg.CTC = decimal.NewFromInt(2500000)

	// WHEN: built
	in, err := Build(cfg)

	// THEN: 20% variable, 70/30 shares
	require.NoError(t, err)
	assert.True(t, in.TotalCompensation.Equal(decimal.NewFromInt(2500000)))
	assert.True(t, in.VariablePercentage.Equal(decimal.NewFromInt(20)))
	assert.True(t, in.RetentionShare.Equal(decimal.RequireFromString("0.7")))
	assert.True(t, in.ExpansionShare.Equal(decimal.RequireFromString("0.3")))

	result := engine.ComputeQuotaMix(in)
	assert.True(t, result.VariableComponent.Equal(decimal.NewFromInt(500000)))
	assert.True(t, result.FixedComponent.Equal(decimal.NewFromInt(2000000)))
	assert.True(t, result.QuarterlyVariable.Equal(decimal.NewFromInt(125000)))
	assert.True(t, result.QuarterlyRetentionBucket.Equal(decimal.NewFromInt(87500)))
	assert.True(t, result.QuarterlyExpansionBucket.Equal(decimal.NewFromInt(37500)))
}

func TestBuild_EveryPresetIsValid(t *testing.T) {
	for _, mix := range MixRatioPresets {
		for _, quota := range QuotaMixPresets {
			cfg := DefaultQuotaConfig()
			cfg.MixRatio = mix
			cfg.QuotaMix = quota
			_, err := Build(cfg)
			assert.NoError(t, err, "%s %s", mix, quota)
		}
	}
}

func TestBuild_CustomSplits(t *testing.T) {
	cfg := DefaultQuotaConfig()
	cfg.CTC = decimal.NewFromInt(1000)
	cfg.MixRatio = "custom_ratio"
	cfg.CustomFixed = "65.5"
	cfg.CustomVariable = "34.5"
	cfg.QuotaMix = "custom_mix"
	cfg.CustomRetention = " 55 "
	cfg.CustomExpansion = "45"

	in, err := Build(cfg)
	require.NoError(t, err)
	assert.True(t, in.VariablePercentage.Equal(decimal.RequireFromString("34.5")))
	assert.True(t, in.RetentionShare.Equal(decimal.RequireFromString("0.55")))
	assert.True(t, in.ExpansionShare.Equal(decimal.RequireFromString("0.45")))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*QuotaConfig)
		want   error
	}{
		{"account manager", func(c *QuotaConfig) { c.Role = RoleAM }, ErrUnsupportedRole},
		{"negative ctc", func(c *QuotaConfig) { c.CTC = decimal.NewFromInt(-1) }, ErrNegativeCTC},
		{"preset without slash", func(c *QuotaConfig) { c.MixRatio = "80" }, ErrInvalidMixRatio},
		{"preset not numeric", func(c *QuotaConfig) { c.QuotaMix = "a/b" }, ErrInvalidMixRatio},
		{"preset not summing", func(c *QuotaConfig) { c.MixRatio = "80/30" }, ErrQuotaMixSum},
		{"custom not summing", func(c *QuotaConfig) {
			c.QuotaMix = "custom_mix"
			c.CustomRetention = "60"
			c.CustomExpansion = "30"
		}, ErrQuotaMixSum},
		{"custom empty", func(c *QuotaConfig) {
			c.MixRatio = "custom_ratio"
			c.CustomFixed = ""
		}, ErrInvalidMixRatio},
		{"custom out of range", func(c *QuotaConfig) {
			c.MixRatio = "custom_ratio"
			c.CustomFixed = "120"
			c.CustomVariable = "-20"
		}, ErrInvalidMixRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultQuotaConfig()
			tt.mutate(&cfg)

			_, err := Build(cfg)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsClientError(err))
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestBuild_SplitErrorDetails(t *testing.T) {
	cfg := DefaultQuotaConfig()
	cfg.MixRatio = "80/30"

	_, err := Build(cfg)

	var split *SplitError
	require.ErrorAs(t, err, &split)
	assert.Equal(t, "mix ratio", split.Split)
	assert.True(t, split.First.Equal(decimal.NewFromInt(80)))
	assert.True(t, split.Other.Equal(decimal.NewFromInt(30)))
}

func TestParseQuotaConfig_KeepsDefaults(t *testing.T) {
	cfg, err := ParseQuotaConfig([]byte(`{"ctc": 1200000, "quota_mix": "60/40"}`))
	require.NoError(t, err)

	assert.Equal(t, RoleCSM, cfg.Role)
	assert.Equal(t, "80/20", cfg.MixRatio)
	assert.Equal(t, "60/40", cfg.QuotaMix)
	assert.True(t, cfg.CTC.Equal(decimal.NewFromInt(1200000)))

	_, err = ParseQuotaConfig([]byte(`{`))
	assert.Error(t, err)
}
