package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
)

var generateCmd = &cobra.Command{
	Use:   "generate NAME",
	Short: "Create a new service",
	Long: `Generates the metadata of a new service: a start page, a check answers page and a
confirmation page linked in sequence, plus the standard footer pages.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		out, _ := cmd.Flags().GetString("out")

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		doc, err := engine.Generate(cmd.Context(), args[0], owner)
		if err != nil {
			return err
		}

		if err := cli.WriteDocument(cmd.OutOrStdout(), out, doc, format); err != nil {
			return fmt.Errorf("failed to write service: %w", err)
		}
		if out != "" && out != "-" {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Service '%s' written to %s", doc.ServiceID, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("owner", "", "Id of the user creating the service")
	generateCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	_ = generateCmd.MarkFlagRequired("owner")
}
