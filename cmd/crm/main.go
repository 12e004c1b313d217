/*
main.go - Application entry point

PURPOSE:
  Runs the crm command tree: the HTTP API (serve), the demo data
  generator (seed) and the schema check (schema).

COMMANDS:
  serve   Start the HTTP API with graceful shutdown
  seed    Create demo clients, deals and tasks
  schema  Create missing tables and print row counts

CONFIGURATION:
  records.yaml in the working directory, $RECORDS_CONFIG or --config.
  --db and --driver override the file for any command.

EXAMPLES:
  # Run with file database
  crm serve --db ./data/crm.db

  # Run with in-memory database and the modernc driver
  crm serve --db ":memory:" --driver modernc

  # Seed 50 records of each kind
  crm seed --n 50

EXIT CODES:
  0  success
  1  runtime failure
  2  bad configuration or unusable database

SEE ALSO:
  - cli/root.go: Command tree
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"fmt"
	"os"

	"github.com/warp/records-engine/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
