/*
main.go - Application entry point

PURPOSE:
  compcalc runs the compensation calculators from the command line and
  serves them over HTTP for the browser UI.

COMMANDS:
  serve                       Start the HTTP API
  attainment                  Actual vs target
  retention                   Retention rate, attainment, churn budgets
  quota                       Fixed/variable split and quarterly buckets
  roster template             Write the example upload
  roster calc                 Calculate an uploaded roster file

GLOBAL FLAGS:
  --config      YAML config file (see config package)
  --format      text | json
  --log-level   debug | info | warn | error
  --port        HTTP port for serve
  --db          Store DSN; "memory" for no persistence

EXAMPLES:
  compcalc serve --db ./data/compcalc.db
  compcalc retention --book 1000000 --churn 20000 --min 0.8 --max 0.9
  compcalc roster calc --in team.xlsx --out results.xlsx --progress

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Settings and environment variables
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
