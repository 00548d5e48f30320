package main

import (
	"github.com/spf13/cobra"

	"github.com/otelkit/docscan/internal/tckimlik"
)

var kimlikCmd = &cobra.Command{
	Use:   "kimlik <number>",
	Short: "Validate a TC Kimlik number checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(tckimlik.Validate(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(kimlikCmd)
}
