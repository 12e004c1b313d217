package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"github.com/warp/records-engine/seed"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	N    int
	Seed uint64
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo records",
		Long: `Create --n clients, --n deals and --n tasks with random content.

Most deals and tasks link to records created in the same run. Existing
rows are kept. --seed makes a run reproducible.

Example:
  crm seed --db ./data/crm.db --n 100
  crm seed --n 20 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
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
			seedOpts := seed.Options{
				N: opts.N,
				Logf: func(format string, args ...any) {
					fmt.Fprintf(out, format+"\n", args...)
				},
			}
			if cmd.Flags().Changed("seed") {
				seedOpts.Rand = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
			}

			res, err := seed.Run(ctx, store.Book(), seedOpts)
			if err != nil {
				return WrapExitError(ExitFailure, "seeding interrupted", err)
			}

			fmt.Fprintf(out, "Created %d clients, %d deals, %d tasks in %s\n",
				len(res.Parties), len(res.Opportunities), len(res.ActionItems), store.Path())
			if res.Failed > 0 {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%d records failed", res.Failed)}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.N, "n", seed.DefaultCount, "records of each kind")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for a reproducible run")

	return cmd
}
