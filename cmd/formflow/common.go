package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/pkg/document"
)

// newEngine builds an engine for one-shot commands: no metrics, logs only with --debug.
func newEngine(cmd *cobra.Command) (*formflow.Engine, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.CreateEngine(cli.CreateLogger(debug), nil)
}

func formatFlag(cmd *cobra.Command) (document.Format, error) {
	name, _ := cmd.Flags().GetString("format")
	if name == "" {
		return "", nil
	}
	return document.ParseFormat(name)
}

// readDocument reads the file named by the first argument, "-" for stdin.
func readDocument(cmd *cobra.Command, args []string) (map[string]any, error) {
	format, err := formatFlag(cmd)
	if err != nil {
		return nil, err
	}
	return cli.ReadDocument(args[0], format)
}
