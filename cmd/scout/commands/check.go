package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/optionscout/optionscout/pkg/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe configuration and connectivity",
	Long: `Validates the configuration and probes every wired dependency:
database (when the archive is enabled), redis (when enabled) and the
Massive snapshot API. Exits non-zero if any probe fails.

Example:
  go run ./cmd/scout check`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Config first: without it nothing else can be probed.
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config     FAIL  %v\n", err)
		return err
	}
	fmt.Println("config     OK")

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		fmt.Printf("wiring     FAIL  %v\n", err)
		return err
	}
	defer a.Close()
	fmt.Println("wiring     OK")

	failed := false

	if cfg.Archive.Enabled {
		if err := a.db.Ping(ctx); err != nil {
			fmt.Printf("database   FAIL  %v\n", err)
			failed = true
		} else {
			stats := a.db.Stats()
			fmt.Printf("database   OK    %d/%d conns\n", stats.TotalConns, stats.MaxConns)
		}
	} else {
		fmt.Println("database   SKIP  archive disabled")
	}

	if cfg.Redis.Enabled {
		if err := a.redis.Redis().Ping(ctx).Err(); err != nil {
			fmt.Printf("redis      FAIL  %v\n", err)
			failed = true
		} else {
			fmt.Println("redis      OK")
		}
	} else {
		fmt.Println("redis      SKIP  disabled")
	}

	if _, err := a.massive.FetchChain(ctx, "SPY"); err != nil {
		fmt.Printf("massive    FAIL  %v\n", err)
		failed = true
	} else {
		fmt.Println("massive    OK")
	}

	if failed {
		return fmt.Errorf("one or more probes failed")
	}

	fmt.Println("\nAll probes passed.")
	return nil
}
