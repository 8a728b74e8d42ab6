package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/warp/comp-calculator/format"
	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/tabular"
)

func newRosterCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Batch retention metrics for a team roster",
	}
	cmd.AddCommand(newRosterTemplateCommand(opts))
	cmd.AddCommand(newRosterCalcCommand(opts))
	return cmd
}

// =============================================================================
// TEMPLATE
// =============================================================================

func newRosterTemplateCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the example roster upload",
		Long: `Write the two-row example roster. The file type follows the --out
extension (.csv or .xlsx); "-" writes CSV to stdout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := writeTableFile(cmd.OutOrStdout(), out, roster.GenerateTemplate(), roster.TemplateSheet); err != nil {
				return err
			}
			opts.log.Debug().Str("out", out).Msg("Template written")
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "-", "output file (.csv or .xlsx), - for stdout")
	return cmd
}

// =============================================================================
// CALC
// =============================================================================

// rosterOutput is the JSON shape of roster calc when no --out file is given.
type rosterOutput struct {
	Records []roster.Record `json:"records"`
	Summary roster.Summary  `json:"summary"`
}

func newRosterCalcCommand(opts *rootOptions) *cobra.Command {
	var (
		in       string
		out      string
		workers  int
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate churn budgets, retention and attainment for every rep",
		Long: `Read a roster (.csv, .xlsx or .xls), calculate every rep and either
write the results to --out (.csv or .xlsx) or print them.

Rows with invalid combinations (churn above book, inverted target band) are
still calculated and reported as warnings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRoster(in)
			if err != nil {
				return err
			}

			if workers <= 0 {
				workers = opts.cfg.Batch.Workers
			}
			p := &roster.Processor{Workers: workers}
			if progress {
				bar := progressbar.NewOptions(len(records),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetDescription("Calculating"),
					progressbar.OptionShowCount(),
				)
				p.OnRecord = func() { _ = bar.Add(1) }
				defer func() { _ = bar.Finish() }()
			}

			results := p.CalculateAll(records)
			for _, r := range results {
				for _, w := range r.Warnings {
					opts.log.Warn().
						Str("rep", r.Name).
						Str("code", string(w.Code)).
						Msg(w.Message)
				}
			}
			summary := roster.Summarize(results)
			opts.log.Info().
				Int("reps", summary.Reps).
				Int("with_warnings", summary.WithWarnings).
				Int("workers", workers).
				Msg("Roster calculated")

			w := cmd.OutOrStdout()
			if out != "" {
				if err := writeTableFile(w, out, roster.ExportResults(results), roster.ResultsSheet); err != nil {
					return err
				}
				if out == "-" {
					return nil
				}
				return opts.printResult(w, summary, func(w io.Writer) { printSummary(w, summary) })
			}

			return opts.printResult(w, rosterOutput{Records: results, Summary: summary}, func(w io.Writer) {
				printRecords(w, results)
				fmt.Fprintln(w)
				printSummary(w, summary)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&in, "in", "", "roster file (.csv, .xlsx or .xls)")
	flags.StringVar(&out, "out", "", "results file (.csv or .xlsx), - for CSV on stdout")
	flags.IntVar(&workers, "workers", 0, "calculation goroutines (default from config)")
	flags.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

func readRoster(path string) ([]roster.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	t, err := tabular.Read(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return roster.ParseRoster(t)
}

// writeTableFile writes t to path in the format its extension implies, or
// CSV to stdout when path is "-".
func writeTableFile(stdout io.Writer, path string, t tabular.Table, sheet string) error {
	if path == "-" {
		return tabular.WriteCSV(stdout, t)
	}

	f, err := tabular.FormatFromFilename(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tabular.Write(file, t, f, sheet); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func printRecords(w io.Writer, records []roster.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REP\tBOOK\tMAX CHURN\tCHURN TARGET\tRETENTION\tATTAINMENT\tWARNINGS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.Name,
			format.USD(r.BookStartARR),
			optional(r.MaxQuarterlyChurnAllowed, format.USD),
			optional(r.QuarterlyChurnTarget, format.USD),
			optional(r.RetentionRate, format.Percent),
			optional(r.Attainment, format.Percent),
			len(r.Warnings),
		)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s roster.Summary) {
	fmt.Fprintf(w, "Reps:                %d\n", s.Reps)
	fmt.Fprintf(w, "With attainment:     %d\n", s.WithAttainment)
	fmt.Fprintf(w, "With warnings:       %d\n", s.WithWarnings)
	fmt.Fprintf(w, "Total book ARR:      %s\n", format.USD(s.TotalBookARR))
	fmt.Fprintf(w, "Total churn ARR:     %s\n", format.USD(s.TotalChurnARR))
	fmt.Fprintf(w, "Average attainment:  %s\n", format.Percent(s.AverageAttainment))
}

func optional(v *float64, render func(float64) string) string {
	if v == nil {
		return "-"
	}
	return render(*v)
}
