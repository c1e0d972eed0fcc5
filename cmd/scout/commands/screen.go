package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/optionscout/optionscout/internal/screener"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen one underlying and print the digest",
	Long: `Fetches the options-chain snapshot for an underlying, ranks the
contracts and prints the digest to stdout.

Example:
  go run ./cmd/scout screen --symbol SPY
  go run ./cmd/scout screen --symbol TSLA --side all --profile aggressive --top 10
  go run ./cmd/scout screen --symbol SPY --explain
  go run ./cmd/scout screen --symbol SPY --debug`,
	RunE: runScreen,
}

var (
	screenSymbol  string
	screenSide    string
	screenProfile string
	screenTop     int
	screenExplain bool
	screenDebug   bool
	screenNoCache bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenSymbol, "symbol", "", "underlying symbol (required)")
	screenCmd.Flags().StringVar(&screenSide, "side", "", "contract side: call, put, all")
	screenCmd.Flags().StringVar(&screenProfile, "profile", "", "risk profile: conservative, balanced, aggressive")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "number of contracts to keep")
	screenCmd.Flags().BoolVar(&screenExplain, "explain", false, "generate an insight alongside the digest")
	screenCmd.Flags().BoolVar(&screenDebug, "debug", false, "score the whole batch with components")
	screenCmd.Flags().BoolVar(&screenNoCache, "no-cache", false, "bypass the snapshot cache")

	screenCmd.MarkFlagRequired("symbol")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Screen(ctx, screener.Request{
		Underlying: screenSymbol,
		Side:       screenSide,
		Profile:    screenProfile,
		TopN:       screenTop,
		Explain:    screenExplain,
		Debug:      screenDebug,
		NoCache:    screenNoCache,
		Source:     "cli",
	})
	if err != nil {
		return fmt.Errorf("screen %s: %w", screenSymbol, err)
	}

	fmt.Printf("%s  side=%s profile=%s  raw=%d contracts\n\n",
		result.Underlying, result.Side, result.Profile, result.RawCount)
	fmt.Println(result.Ranked.Digest)

	if screenDebug {
		fmt.Printf("\nweights: volume=%.2f oi=%.2f iv=%.2f premium=%.2f delta=%.2f\n",
			result.Weights.Volume, result.Weights.OpenInterest, result.Weights.IV,
			result.Weights.Premium, result.Weights.Delta)
		fmt.Println("\ncomponents (normalized):")
		for i := range result.Ranked.Contracts {
			c := &result.Ranked.Contracts[i]
			fmt.Printf("%3d. %-24s score=%.4f vol=%.3f oi=%.3f iv=%.3f prem=%.3f delta=%.3f\n",
				c.Rank, c.Symbol, c.Score,
				c.Components.Volume, c.Components.OpenInterest, c.Components.IV,
				c.Components.Premium, c.Components.Delta)
		}
	}

	if result.Insight != "" {
		fmt.Printf("\ninsight: %s\n", result.Insight)
	}

	return nil
}
