package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/presentation/tui"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a service for schema and flow graph violations",
	Long: `Validates a service document against the page schemas, then checks the flow graph for
dangling destinations, unreachable pages, duplicates and conditions on unknown components.
Every violation is reported. The exit code is 1 when the service is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readDocument(cmd, args)
		if err != nil {
			return err
		}
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}

		result := engine.Validate(cmd.Context(), raw)

		plain, _ := cmd.Flags().GetBool("plain")
		rich := !plain && tui.IsTerminal(os.Stdout)
		if err := tui.WriteReport(cmd.OutOrStdout(), args[0], result, rich); err != nil {
			return err
		}
		if !result.Valid() {
			return fmt.Errorf("%s is invalid: %d violation(s)", args[0], len(result.Violations))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("plain", false, "Disable markdown rendering")
}
