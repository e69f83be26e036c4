package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "formflow validates and navigates multi-page form services",
	Long: `formflow checks service documents against their schemas and flow graph rules,
resolves the next page from submitted answers, and serves services over HTTP or MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().String("format", "", "Document format: json or yaml (default: from file extension)")
}
