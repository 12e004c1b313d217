package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/records-engine/crm"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the tables if missing and show row counts",
		Long: `Open the configured database, create any missing table or index,
and print the number of rows per table. Existing data is never changed.

Example:
  crm schema --db ./data/crm.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schema ready: %s (%s)\n", store.Path(), cfg.Database.Driver)
			for _, table := range []string{crm.PartiesTable, crm.OpportunitiesTable, crm.ActionItemsTable} {
				var n int64
				if err := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
					return WrapExitError(ExitFailure, "failed to count "+table, err)
				}
				fmt.Fprintf(out, "  %-14s %d\n", table, n)
			}
			return nil
		},
	}
}
