package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Export the flow graph visualization",
	Long: `Loads a valid service and outputs a Mermaid diagram (graph TD) of its flow.
With --answer, the path those answers take through the flow is highlighted.`,
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
		g, err := engine.Load(cmd.Context(), raw)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if pairs, _ := cmd.Flags().GetStringArray("answer"); len(pairs) > 0 {
			answers, err := cli.ParseAnswers(pairs)
			if err != nil {
				return err
			}
			path, err := g.Trace(answers)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{VisitedPages: path}
			if len(path) > 0 {
				overlay.CurrentPage = path[len(path)-1]
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringArrayP("answer", "a", nil, "Answer as component=value, repeatable; highlights the resulting path")
}
