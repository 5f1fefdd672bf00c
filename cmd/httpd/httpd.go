// Package httpd implements the httpd subcommand: the long-running HTTP
// surface over the crawl and investigation pipelines.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "github.com/vigialabs/vigia/cmd/common"
	"github.com/vigialabs/vigia/internal/api"
)

const shutdownTimeout = 10 * time.Second

// Command returns the httpd command.
func Command(opts func() cmdcommon.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewDeps(opts())
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps *cmdcommon.Deps) error {
	server := api.Params{
		Logger:  deps.Logger,
		Crawler: deps.NewCrawler(),
		Metrics: deps.Metrics,
		Version: deps.Config.App.Version,
	}

	// The crawl endpoint works without a database, so a connection
	// failure only disables the investigation endpoint.
	db, err := deps.OpenDatabase()
	if err != nil {
		deps.Logger.Warn("database unavailable, investigation endpoint disabled", "error", err)
	} else {
		defer db.Close()
		server.Investigator = deps.NewInvestigator(db)
	}

	srv := &http.Server{
		Addr:         deps.Config.Server.Address,
		Handler:      api.NewServer(server).Router(),
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
