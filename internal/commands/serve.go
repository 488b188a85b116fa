package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shoplist/shoplist-cli/internal/devserver"
	"github.com/shoplist/shoplist-cli/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	Addr  string
	DB    string
	Watch bool
}

// NewServeCmd creates the serve command, a local items backend.
func NewServeCmd() *cobra.Command {
	opts := serveOptions{Addr: devserver.DefaultAddr, DB: devserver.DefaultPath}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local items backend",
		Long: `Serve the items resource from a JSON file for local development.

The file holds {"items": [...]}. It is created when missing. With --watch,
edits made to the file by hand are picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, opts, logging.Component("devserver"), func(srv *devserver.Server) {
				fmt.Fprintf(app.Stderr(), "Serving items from %s on http://%s (ctrl+c to stop)\n", opts.DB, srv.Addr())
			})
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", opts.Addr, "Address to listen on")
	cmd.Flags().StringVar(&opts.DB, "db", opts.DB, "JSON file holding the items")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload the file when it changes on disk")
	return cmd
}

// runServe serves until ctx is done. ready is called once the listener is up.
func runServe(ctx context.Context, opts serveOptions, logger zerolog.Logger, ready func(*devserver.Server)) error {
	db, err := devserver.Open(opts.DB)
	if err != nil {
		return fmt.Errorf("opening %s: %w", opts.DB, err)
	}

	if opts.Watch {
		w, err := devserver.NewWatcher(db, logger)
		if err != nil {
			return fmt.Errorf("watching %s: %w", opts.DB, err)
		}
		defer func() { _ = w.Close() }()
	}

	srv := devserver.New(db, logger)
	if err := srv.Start(opts.Addr); err != nil {
		return err
	}
	if ready != nil {
		ready(srv)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
