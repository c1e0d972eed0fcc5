package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command when scout is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "OptionScout - options-chain screening service",
	Long: `OptionScout CLI

Screens options-chain snapshots for an underlying, ranks the contracts with
a weighted composite score and renders a deterministic digest.

Usage:
  go run ./cmd/scout [command]

Examples:
  go run ./cmd/scout screen --symbol SPY
  go run ./cmd/scout api
  go run ./cmd/scout start
  go run ./cmd/scout check`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
