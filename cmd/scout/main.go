package main

import (
	"os"

	"github.com/optionscout/optionscout/cmd/scout/commands"
)

// main is the entry point for the scout CLI: go run ./cmd/scout [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
