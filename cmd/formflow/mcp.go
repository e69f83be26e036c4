package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/pkg/adapters/mcp"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts formflow as an MCP Server.
This allows AI agents to generate, validate and navigate services as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout
		logger := logging.NewJSON(os.Stderr, level)
		slog.SetDefault(logger)
		log.SetOutput(os.Stderr)

		engine, err := cli.CreateEngine(logger, nil)
		if err != nil {
			return err
		}

		backend, err := cli.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		store := middleware.Chain(backend.Store, middleware.NewVersionMiddleware(nil))
		srv := mcp.NewServer(engine, store)

		switch transport {
		case "stdio":
			slog.Info("Starting formflow MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			slog.Info("Starting formflow MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	addStoreFlags(mcpCmd)
}
