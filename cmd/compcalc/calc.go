package main

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/warp/comp-calculator/engine"
	"github.com/warp/comp-calculator/factory"
	"github.com/warp/comp-calculator/format"
)

// =============================================================================
// ATTAINMENT
// =============================================================================

func newAttainmentCommand(opts *rootOptions) *cobra.Command {
	var in engine.AttainmentInput

	cmd := &cobra.Command{
		Use:           "attainment",
		Short:         "Compute attainment of actual against target",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := engine.ValidateAttainment(in); err != nil {
				return err
			}
			res, err := engine.Evaluate(in)
			if err != nil {
				return err
			}
			return opts.printResult(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Attainment:  %s\n", format.Points(res.Percentage))
				fmt.Fprintf(w, "Remaining:   %s\n", format.USD(res.Remaining))
				fmt.Fprintf(w, "Level:       %s\n", res.Level)
			})
		},
	}

	cmd.Flags().Float64Var(&in.Actual, "actual", 0, "actual value achieved")
	cmd.Flags().Float64Var(&in.Target, "target", 0, "target value (must be positive)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// =============================================================================
// RETENTION
// =============================================================================

func newRetentionCommand(opts *rootOptions) *cobra.Command {
	var in engine.RetentionInput

	cmd := &cobra.Command{
		Use:           "retention",
		Short:         "Compute retention rate, attainment and churn budgets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := engine.CalculateRetention(in)
			if err != nil {
				return err
			}
			return opts.printResult(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "Retention rate:               %s\n", format.Percent(res.RetentionRate))
				fmt.Fprintf(w, "Attainment:                   %s\n", format.Percent(res.Attainment))
				fmt.Fprintf(w, "Max quarterly churn allowed:  %s\n", format.USD(res.MaxQuarterlyChurnAllowed))
				fmt.Fprintf(w, "Quarterly churn target:       %s\n", format.USD(res.QuarterlyChurnTarget))
			})
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&in.BookARR, "book", 0, "book start ARR")
	flags.Float64Var(&in.ChurnARR, "churn", 0, "churned ARR this quarter")
	flags.Float64Var(&in.MinRetentionTarget, "min", 0, "minimum retention target (fraction)")
	flags.Float64Var(&in.MaxRetentionTarget, "max", 0, "maximum retention target (fraction)")
	_ = cmd.MarkFlagRequired("book")

	return cmd
}

// =============================================================================
// QUOTA MIX
// =============================================================================

// quotaOutput is the JSON shape of the quota command.
type quotaOutput struct {
	Input  engine.QuotaMixInput  `json:"input"`
	Result engine.QuotaMixResult `json:"result"`
}

func newQuotaCommand(opts *rootOptions) *cobra.Command {
	cfg := factory.DefaultQuotaConfig()
	var ctc string

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Split total compensation into fixed, variable and quarterly buckets",
		Long: `Split total compensation (CTC) into fixed and variable pay, then the
quarterly variable into retention and expansion buckets.

Splits are given as "fixed/variable" and "retention/expansion" percentages
that sum to 100, e.g. --mix 80/20 --quota-mix 70/30. A split starting with
"custom_" takes its parts from the matching --custom-* flags instead:

  compcalc quota --ctc 1200000 --mix custom_ratio --custom-fixed 65 --custom-variable 35`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(ctc)
			if err != nil {
				return fmt.Errorf("invalid --ctc %q: %w", ctc, err)
			}
			cfg.CTC = amount

			in, err := factory.Build(cfg)
			if err != nil {
				return err
			}
			res := engine.ComputeQuotaMix(in)

			return opts.printResult(cmd.OutOrStdout(), quotaOutput{Input: in, Result: res}, func(w io.Writer) {
				fmt.Fprintf(w, "Fixed component:             %s\n", format.INRDecimal(res.FixedComponent))
				fmt.Fprintf(w, "Variable component:          %s\n", format.INRDecimal(res.VariableComponent))
				fmt.Fprintf(w, "Quarterly variable:          %s\n", format.INRDecimal(res.QuarterlyVariable))
				fmt.Fprintf(w, "Quarterly retention bucket:  %s\n", format.INRDecimal(res.QuarterlyRetentionBucket))
				fmt.Fprintf(w, "Quarterly expansion bucket:  %s\n", format.INRDecimal(res.QuarterlyExpansionBucket))
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ctc, "ctc", "", "total compensation")
	flags.StringVar((*string)(&cfg.Role), "role", string(factory.RoleCSM), "role (only CSM is supported)")
	flags.StringVar(&cfg.MixRatio, "mix", cfg.MixRatio, "fixed/variable split")
	flags.StringVar(&cfg.QuotaMix, "quota-mix", cfg.QuotaMix, "retention/expansion split")
	flags.StringVar(&cfg.CustomFixed, "custom-fixed", cfg.CustomFixed, "fixed percentage for a custom_ mix")
	flags.StringVar(&cfg.CustomVariable, "custom-variable", cfg.CustomVariable, "variable percentage for a custom_ mix")
	flags.StringVar(&cfg.CustomRetention, "custom-retention", cfg.CustomRetention, "retention percentage for a custom_ quota mix")
	flags.StringVar(&cfg.CustomExpansion, "custom-expansion", cfg.CustomExpansion, "expansion percentage for a custom_ quota mix")
	_ = cmd.MarkFlagRequired("ctc")

	return cmd
}
