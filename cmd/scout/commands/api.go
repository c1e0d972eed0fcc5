package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/optionscout/optionscout/internal/api"
	"github.com/optionscout/optionscout/internal/api/handlers"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server without the scheduler.

Endpoints:
  GET  /health                         - Health check
  GET  /metrics                        - Prometheus metrics
  GET  /api/screener                   - Screen an underlying
  GET  /api/debug/screener             - Full scored batch, no truncation
  GET  /api/insights/{symbol}/recent   - Archived digests
  GET  /api/insights/{symbol}/latest   - Latest archived digest
  GET  /api/watchlist                  - Show watchlist
  POST /api/watchlist/refresh          - Refresh watchlist from movers

Example:
  go run ./cmd/scout api
  go run ./cmd/scout api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	server := api.New(a.cfg, a.log, newRouter(a))

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("OptionScout API listening on http://localhost:%s\n", a.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// newRouter assembles the HTTP router from the wired app. Shared by the
// api and start commands.
func newRouter(a *app) http.Handler {
	return api.NewRouter(a.cfg, a.log, api.RouterDeps{
		Screener:  handlers.NewScreenerHandler(a.service, a.log),
		Insights:  handlers.NewInsightsHandler(a.archive, a.log),
		Watchlist: handlers.NewWatchlistHandler(a.list, a.movers, a.cfg.Watchlist.TopK, a.log),
		Limiter:   a.limiter,
		Metrics:   a.metrics,
	})
}
