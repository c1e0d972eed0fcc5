package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/optionscout/optionscout/internal/scheduler"
	"github.com/optionscout/optionscout/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled jobs without the HTTP API",
	Long: `Runs only the cron jobs:
  digest_refresh     - screen every watchlist symbol and archive digests
  watchlist_refresh  - rebuild the watchlist from the most-active table

Example:
  go run ./cmd/scout scheduler
  go run ./cmd/scout scheduler --run-now digest_refresh`,
	RunE: runScheduler,
}

var runNowJob string

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&runNowJob, "run-now", "", "run the named job immediately on startup")
}

// buildScheduler registers the jobs on a new scheduler.
func buildScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, a.metrics)

	// Insights are only generated when the archive keeps them; without it a
	// scheduled sweep's prose would be computed and thrown away.
	var pruner jobs.Pruner
	if a.archive != nil {
		pruner = a.archive
	}
	retention := time.Duration(a.cfg.Archive.RetentionDays) * 24 * time.Hour
	digestJob := jobs.NewDigestRefreshJob(
		a.service, a.list, pruner, retention,
		a.cfg.Scheduler.DigestCron, a.cfg.Archive.Enabled, a.log)
	if err := sched.AddJob(digestJob); err != nil {
		return nil, err
	}

	watchlistJob := jobs.NewWatchlistRefreshJob(
		a.movers, a.list, a.cfg.Watchlist.TopK, a.cfg.Scheduler.WatchlistCron, a.log)
	if err := sched.AddJob(watchlistJob); err != nil {
		return nil, err
	}

	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := buildScheduler(a)
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if runNowJob != "" {
		if err := sched.RunJob(runNowJob); err != nil {
			return err
		}
	}

	fmt.Println("Scheduler running. Press Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
