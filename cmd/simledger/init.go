package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradeforge/simledger/config"
)

func newInitCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := cfg.SaveToFile(out); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "simledger.yaml", "output path (.yaml or .json)")
	return cmd
}
