package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/records-engine/api"
	"github.com/warp/records-engine/config"
)

// shutdownTimeout bounds how long active requests may finish on shutdown.
const shutdownTimeout = 30 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API over the configured database.

The schema is created on first start. On SIGINT/SIGTERM the server stops
accepting connections, waits for active requests, then closes the database.

Example:
  crm serve --db ./data/crm.db --port 8000
  crm serve --db ":memory:" --driver modernc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if opts.Port != 0 {
				cfg.Server.Port = opts.Port
			}

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to listen", err)
			}
			return serve(ctx, cfg, ln)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", 0, "HTTP server port (overrides config)")

	return cmd
}

// serve runs the API on ln until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		ln.Close()
		return err
	}
	defer store.Close()

	handler := api.NewHandler(store.Book())
	handler.Ping = func(r *http.Request) error {
		return store.DB().PingContext(r.Context())
	}
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://%s", ln.Addr())
		log.Printf("Database: %s (%s)", store.Path(), cfg.Database.Driver)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return WrapExitError(ExitFailure, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "server forced to shutdown", err)
	}

	log.Println("Server stopped")
	return nil
}
