// Package cli implements the crm command tree.
//
// Every command resolves one config.Config (file, then flag overrides) and
// passes it down explicitly. Nothing reads configuration from globals.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/warp/records-engine/config"
	"github.com/warp/records-engine/store/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Driver     string
}

// NewRootCommand creates the root command for the crm CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crm",
		Short: "crm - a small record manager for clients, deals and tasks",
		Long: `A small record manager for clients, deals and tasks kept in a local
SQLite database.

Configuration is read from --config, $` + config.EnvConfigPath + ` or ./` + config.DefaultConfigFile + `,
in that order. --db and --driver override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path (\":memory:\" for in-memory)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|modernc)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// loadConfig resolves the configuration for a command.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, _, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openStore opens the configured database.
func openStore(ctx context.Context, cfg *config.Config) (*sqlite.Store, error) {
	store, err := sqlite.Open(ctx, cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return store, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
