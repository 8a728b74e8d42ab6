/*
Package factory converts stored quota configurations into engine input.

PURPOSE:
  The quota calculator form stores what the user picked, not numbers the
  engine can use: a preset like "80/20" or a custom split typed as text.
  The factory turns that stored form into an engine.QuotaMixInput and is
  where the split rules live. The engine applies whatever shares it is
  given.

JSON SCHEMA:
  {
    "role": "CSM",
    "ctc": 2500000,
    "mix_ratio": "80/20",              // fixed/variable, or "custom_..."
    "custom_fixed": "80",
    "custom_variable": "20",
    "quota_mix": "70/30",              // retention/expansion, or "custom_..."
    "custom_retention": "70",
    "custom_expansion": "30"
  }

RULES:
  - role must be CSM; AM is not supported yet
  - ctc must be non-negative
  - preset and custom splits must each sum to 100
  - retention and expansion percents become shares (divided by 100)

USAGE:
  cfg, err := factory.ParseQuotaConfig(body)
  in, err := factory.Build(cfg)
  result := engine.ComputeQuotaMix(in)

SEE ALSO:
  - engine/quotamix.go: ComputeQuotaMix
  - session/session.go: QuotaConfig is the persisted quota section
*/
package factory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/comp-calculator/engine"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidMixRatio is returned when a preset is not "a/b" or a custom
	// value is not a number.
	ErrInvalidMixRatio = errors.New("invalid mix ratio")

	// ErrQuotaMixSum is returned when a split does not add up to 100.
	ErrQuotaMixSum = errors.New("split must sum to 100")

	// ErrUnsupportedRole is returned for roles without a quota model.
	ErrUnsupportedRole = errors.New("unsupported role")

	// ErrNegativeCTC is returned when total compensation is below zero.
	ErrNegativeCTC = errors.New("total compensation cannot be negative")
)

// SplitError names the split that failed and the two parts it had.
type SplitError struct {
	Split string
	First decimal.Decimal
	Other decimal.Decimal
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("%s: %s + %s: %v", e.Split, e.First, e.Other, ErrQuotaMixSum)
}

func (e *SplitError) Unwrap() error {
	return ErrQuotaMixSum
}

// IsClientError returns true if the configuration itself is wrong.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidMixRatio) ||
		errors.Is(err, ErrQuotaMixSum) ||
		errors.Is(err, ErrUnsupportedRole) ||
		errors.Is(err, ErrNegativeCTC)
}

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// Role selects the quota model.
type Role string

const (
	RoleCSM Role = "CSM"
	RoleAM  Role = "AM"
)

// CustomPrefix marks a mix ratio or quota mix that uses the custom fields.
const CustomPrefix = "custom_"

// Preset splits offered by the form.
var (
	MixRatioPresets = []string{"80/20", "75/25", "70/30", "60/40", "50/50"}
	QuotaMixPresets = []string{"70/30", "60/40", "50/50", "80/20"}
)

// QuotaConfig is the stored quota calculator form. Custom values are kept
// as the text the user typed.
type QuotaConfig struct {
	Role            Role            `json:"role"`
	CTC             decimal.Decimal `json:"ctc"`
	MixRatio        string          `json:"mix_ratio"`
	CustomFixed     string          `json:"custom_fixed,omitempty"`
	CustomVariable  string          `json:"custom_variable,omitempty"`
	QuotaMix        string          `json:"quota_mix"`
	CustomRetention string          `json:"custom_retention,omitempty"`
	CustomExpansion string          `json:"custom_expansion,omitempty"`
}

// DefaultQuotaConfig is what a fresh form shows.
func DefaultQuotaConfig() QuotaConfig {
	return QuotaConfig{
		Role:            RoleCSM,
		CTC:             decimal.Zero,
		MixRatio:        "80/20",
		CustomFixed:     "80",
		CustomVariable:  "20",
		QuotaMix:        "70/30",
		CustomRetention: "70",
		CustomExpansion: "30",
	}
}

// ParseQuotaConfig decodes JSON onto the defaults, so omitted fields keep
// their default value.
func ParseQuotaConfig(data []byte) (QuotaConfig, error) {
	cfg := DefaultQuotaConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return QuotaConfig{}, fmt.Errorf("failed to parse quota config JSON: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// BUILD
// =============================================================================

// Build validates the configuration and converts it to engine input.
func Build(cfg QuotaConfig) (engine.QuotaMixInput, error) {
	switch cfg.Role {
	case RoleCSM, "":
	default:
		return engine.QuotaMixInput{}, fmt.Errorf("%w: %s", ErrUnsupportedRole, cfg.Role)
	}
	if cfg.CTC.IsNegative() {
		return engine.QuotaMixInput{}, ErrNegativeCTC
	}

	_, variable, err := resolveSplit("mix ratio", cfg.MixRatio, cfg.CustomFixed, cfg.CustomVariable)
	if err != nil {
		return engine.QuotaMixInput{}, err
	}
	retention, expansion, err := resolveSplit("quota mix", cfg.QuotaMix, cfg.CustomRetention, cfg.CustomExpansion)
	if err != nil {
		return engine.QuotaMixInput{}, err
	}

	hundred := decimal.NewFromInt(100)
	return engine.QuotaMixInput{
		TotalCompensation:  cfg.CTC,
		VariablePercentage: variable,
		RetentionShare:     retention.Div(hundred),
		ExpansionShare:     expansion.Div(hundred),
	}, nil
}

// Validate reports whether Build would accept the configuration.
func Validate(cfg QuotaConfig) error {
	_, err := Build(cfg)
	return err
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// resolveSplit returns both percentages of a preset ("80/20") or of the
// custom pair when the selection starts with CustomPrefix.
func resolveSplit(name, selection, customFirst, customOther string) (decimal.Decimal, decimal.Decimal, error) {
	var first, other string
	if strings.HasPrefix(selection, CustomPrefix) {
		first, other = customFirst, customOther
	} else {
		var ok bool
		first, other, ok = strings.Cut(selection, "/")
		if !ok {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %s %q", ErrInvalidMixRatio, name, selection)
		}
	}

	a, err := parsePercent(name, first)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	b, err := parsePercent(name, other)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if !a.Add(b).Equal(decimal.NewFromInt(100)) {
		return decimal.Zero, decimal.Zero, &SplitError{Split: name, First: a, Other: b}
	}
	return a, b, nil
}

func parsePercent(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrInvalidMixRatio, name, s)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%w: %s %q out of range", ErrInvalidMixRatio, name, s)
	}
	return d, nil
}
