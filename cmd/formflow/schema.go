package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/presentation/tui"
)

var schemaCmd = &cobra.Command{
	Use:   "schema FILE",
	Short: "Check a document fragment against one named schema",
	Long: `Validates a fragment, for example a single page, against one schema such as
page.start or component.radios. Use --list to print the known schema names.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}

		if list, _ := cmd.Flags().GetBool("list"); list {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(engine.Validator().Names(), "\n"))
			return nil
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		raw, err := readDocument(cmd, args)
		if err != nil {
			return err
		}

		result := engine.ValidateSchema(cmd.Context(), raw, name)
		rich := tui.IsTerminal(os.Stdout)
		if err := tui.WriteReport(cmd.OutOrStdout(), args[0]+" ("+name+")", result, rich); err != nil {
			return err
		}
		if !result.Valid() {
			return fmt.Errorf("%s does not match %s", args[0], name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().String("name", "", "Schema name, e.g. page.start")
	schemaCmd.Flags().Bool("list", false, "List the known schema names")
}
