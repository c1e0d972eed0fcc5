package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Inspect or refresh the watchlist",
}

var watchlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current watchlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		symbols, err := a.list.Load()
		if err != nil {
			return err
		}

		fmt.Printf("%s (%d symbols)\n", a.list.Path(), len(symbols))
		for _, s := range symbols {
			fmt.Println("  " + s)
		}
		return nil
	},
}

var watchlistRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Replace the watchlist with the current most-active underlyings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		active, err := a.movers.MostActive(ctx, a.cfg.Watchlist.TopK)
		if err != nil {
			return err
		}

		symbols := make([]string, len(active))
		for i, m := range active {
			symbols[i] = m.Symbol
		}

		if err := a.list.Replace(symbols); err != nil {
			return err
		}

		fmt.Printf("Watchlist refreshed with %d symbols:\n", len(symbols))
		for _, s := range symbols {
			fmt.Println("  " + s)
		}
		return nil
	},
}

func init() {
	watchlistCmd.AddCommand(watchlistShowCmd)
	watchlistCmd.AddCommand(watchlistRefreshCmd)
	rootCmd.AddCommand(watchlistCmd)
}
