package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/pkg/domain"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Resolve the page that follows a submitted page",
	Long: `Loads a valid service and prints the page that follows --page for the given answers.
With --trace, the whole path from the start page is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageID, _ := cmd.Flags().GetString("page")
		trace, _ := cmd.Flags().GetBool("trace")
		pairs, _ := cmd.Flags().GetStringArray("answer")

		if pageID == "" && !trace {
			return fmt.Errorf("either --page or --trace is required")
		}

		answers, err := cli.ParseAnswers(pairs)
		if err != nil {
			return err
		}
		raw, err := readDocument(cmd, args)
		if err != nil {
			return err
		}
		engine, err := newEngine(cmd)
		if err != nil {
			return err
		}
		g, err := engine.Load(cmd.Context(), raw)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if trace {
			path, err := g.Trace(answers)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.Join(path, " -> "))
			return nil
		}

		next, err := engine.Resolve(cmd.Context(), g, pageID, answers)
		if err != nil {
			return err
		}
		if next == domain.EndOfFlow {
			fmt.Fprintln(out, "(end of flow)")
			return nil
		}
		page, _ := g.Page(next)
		fmt.Fprintf(out, "%s\t%s\n", next, page.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("page", "", "Uuid of the submitted page")
	resolveCmd.Flags().StringArrayP("answer", "a", nil, "Answer as component=value, repeatable")
	resolveCmd.Flags().Bool("trace", false, "Print the full path from the start page")
}
