// Package watch implements the watch subcommand: scheduled
// re-investigation of a configured list of targets.
package watch

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	cmdcommon "github.com/vigialabs/vigia/cmd/common"
	"github.com/vigialabs/vigia/internal/ingest"
)

// Command returns the watch command.
func Command(opts func() cmdcommon.Options) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-investigate the configured targets on a schedule",
		Long: `Runs a full investigation for every configured target on the
configured cron schedule. Results are persisted the same way the
investigate command persists them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := cmdcommon.NewDeps(opts())
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			if len(deps.Config.Watch.Targets) == 0 {
				return fmt.Errorf("no watch targets configured")
			}

			db, err := deps.OpenDatabase()
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return run(cmd.Context(), deps, deps.NewInvestigator(db), runNow)
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "run all targets once before scheduling")

	return cmd
}

func run(ctx context.Context, deps *cmdcommon.Deps, investigator *ingest.Investigator, runNow bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		for _, target := range deps.Config.Watch.Targets {
			if ctx.Err() != nil {
				return
			}
			report, err := investigator.Investigate(ctx, target)
			if err != nil {
				deps.Logger.Error("scheduled investigation failed", "target", target, "error", err)
				continue
			}
			deps.Logger.Info("scheduled investigation finished",
				"target", target,
				"processed", report.Processed,
				"errors", report.Errors,
				"vectors", report.Vectors,
			)
		}
	}

	if runNow {
		sweep()
	}

	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(cronParser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	schedule := deps.Config.Watch.Schedule
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}

	deps.Logger.Info("watcher started",
		"schedule", schedule,
		"targets", len(deps.Config.Watch.Targets),
	)
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	deps.Logger.Info("watcher stopping")
	return nil
}
