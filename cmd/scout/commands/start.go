package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optionscout/optionscout/internal/api"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP API server and the scheduler",
	Long: `Starts the full service: the REST API plus the scheduled jobs
(digest_refresh, watchlist_refresh).

Example:
  go run ./cmd/scout start`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
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

	server := api.New(a.cfg, a.log, newRouter(a))

	sched.Start()
	defer sched.Stop()

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("OptionScout running on http://localhost:%s (scheduler active)\n", a.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
