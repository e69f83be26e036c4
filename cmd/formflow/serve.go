package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/formflow/internal/cli"
	"github.com/aretw0/formflow/internal/logging"
	"github.com/aretw0/formflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/formflow/pkg/adapters/http"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts formflow in server mode, exposing services, validation and next page
resolution as a JSON API over HTTP. Services are kept in the store chosen with --store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromFlags(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		quiet, _ := cmd.Flags().GetBool("quiet")

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := logging.NewJSON(os.Stderr, level)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		engine, err := cli.CreateEngine(logger, reg)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		backend, err := cli.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		store := middleware.Chain(backend.Store,
			middleware.NewValidationMiddleware(engine),
			middleware.NewVersionMiddleware(nil),
		)
		handler := httpAdapter.NewHandler(engine, store,
			httpAdapter.WithLocker(backend.Locker),
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			if !quiet {
				tui.PrintBanner(cmd.ErrOrStderr())
				cli.PrintSystemMessage(cmd.ErrOrStderr(), "Listening on %s (store: %s)", srv.Addr, cfg.Store)
			}
			logger.Info("server starting", "addr", srv.Addr, "store", cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown started", "signal", fmt.Sprint(ctx.Signal()))

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// SSE subscribers keep connections open until their request context ends.
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

// configFromFlags overlays the store flags on the FORMFLOW_* environment.
func configFromFlags(cmd *cobra.Command) (cli.Config, error) {
	cfg, err := cli.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", cli.StoreMemory, "Service store: memory, redis or loam (env FORMFLOW_STORE)")
	cmd.Flags().String("data-dir", "./services", "Directory of the loam store (env FORMFLOW_DATA_DIR)")
	cmd.Flags().String("redis-addr", "localhost:6379", "Redis address (env FORMFLOW_REDIS_ADDR)")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error (env FORMFLOW_LOG_LEVEL)")
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	addStoreFlags(serveCmd)
}
