package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/warp/comp-calculator/config"
	"github.com/warp/comp-calculator/logging"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	Format     string // "json" | "text"
	LogLevel   string
	Port       int
	DB         string

	// Populated by PersistentPreRunE.
	cfg config.Config
	log zerolog.Logger
}

var validFormats = []string{"text", "json"}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "compcalc",
		Short:         "Sales and customer-success compensation calculators",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (overrides config)")
	flags.IntVar(&opts.Port, "port", 0, "HTTP port (overrides config)")
	flags.StringVar(&opts.DB, "db", "", `store DSN, or "memory" (overrides config)`)

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newAttainmentCommand(opts))
	cmd.AddCommand(newRetentionCommand(opts))
	cmd.AddCommand(newQuotaCommand(opts))
	cmd.AddCommand(newRosterCommand(opts))

	return cmd
}

// load resolves config file, environment and flags, then builds the logger.
// Logs go to stderr so JSON output on stdout stays clean.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.DB != "" {
		applyDB(&cfg, o.DB)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.log = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return nil
}

// applyDB maps the --db shorthand onto a driver and DSN.
func applyDB(cfg *config.Config, db string) {
	switch {
	case db == config.DriverMemory:
		cfg.Store.Driver = config.DriverMemory
		cfg.Store.DSN = ""
	case strings.HasPrefix(db, "postgres://"), strings.HasPrefix(db, "postgresql://"):
		cfg.Store.Driver = config.DriverPostgres
		cfg.Store.DSN = db
	default:
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.DSN = db
	}
}

// printResult writes v as indented JSON, or calls text for human output.
func (o *rootOptions) printResult(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
