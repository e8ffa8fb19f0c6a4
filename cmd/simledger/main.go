package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "simledger",
		Short:         "Deterministic market-simulation ledger",
		Long:          "simledger replays historical daily bars against a trading strategy\nand reports the resulting trade log, equity history and performance statistics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBacktestCmd(),
		newInitCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
