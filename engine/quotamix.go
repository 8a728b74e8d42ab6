package engine

import "github.com/shopspring/decimal"

// QuartersPerYear is the fixed amortization divisor for variable pay.
const QuartersPerYear = 4

var hundred = decimal.NewFromInt(100)

// QuotaMixInput splits total compensation. VariablePercentage is a percent
// in [0,100]; the shares are fractions that callers keep summing to 1.
type QuotaMixInput struct {
	TotalCompensation  decimal.Decimal `json:"total_compensation"`
	VariablePercentage decimal.Decimal `json:"variable_percentage"`
	RetentionShare     decimal.Decimal `json:"retention_share"`
	ExpansionShare     decimal.Decimal `json:"expansion_share"`
}

// QuotaMixResult carries full-precision amounts; round only when rendering.
type QuotaMixResult struct {
	FixedComponent           decimal.Decimal `json:"fixed_component"`
	VariableComponent        decimal.Decimal `json:"variable_component"`
	QuarterlyVariable        decimal.Decimal `json:"quarterly_variable"`
	QuarterlyRetentionBucket decimal.Decimal `json:"quarterly_retention_bucket"`
	QuarterlyExpansionBucket decimal.Decimal `json:"quarterly_expansion_bucket"`
}

// ComputeQuotaMix breaks total compensation into fixed and variable parts and
// the variable part into quarterly retention and expansion buckets.
//
// The shares are applied as given. Checking that they sum to 1 belongs to
// the configuration layer (see factory.Build).
func ComputeQuotaMix(in QuotaMixInput) QuotaMixResult {
	variable := in.TotalCompensation.Mul(in.VariablePercentage).Div(hundred)
	quarterly := variable.Div(decimal.NewFromInt(QuartersPerYear))
	return QuotaMixResult{
		FixedComponent:           in.TotalCompensation.Sub(variable),
		VariableComponent:        variable,
		QuarterlyVariable:        quarterly,
		QuarterlyRetentionBucket: quarterly.Mul(in.RetentionShare),
		QuarterlyExpansionBucket: quarterly.Mul(in.ExpansionShare),
	}
}
