package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck/internal/server"
	"github.com/jpalmerr/pulsecheck/internal/store"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the pulsecheck HTTP server.

The server will:
  - Load configuration from the specified YAML file
  - Run every target once per POST /api/check (bearer token required when
    server.auth_token is set) and alert on down targets
  - Expose the latest report at /api/report, a live stream at /api/events
    and Prometheus metrics at /metrics

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  pulsecheck serve -c config.yaml
  pulsecheck serve --config /etc/pulsecheck/config.yaml`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, logger, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	checker, err := newChecker(cfg, logger)
	if err != nil {
		return err
	}
	defer checker.Close()

	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Server.AuthToken == "" {
		logger.Warn("server.auth_token is empty, /api routes are unauthenticated")
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(
		server.Config{Addr: cfg.Server.Addr, AuthToken: cfg.Server.AuthToken},
		checker,
		dispatcher,
		store.NewMemoryStore(),
		logger,
	)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	select {
	case <-srv.Done():
		logger.Info("shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out",
			"timeout", shutdownTimeout.String(),
			"action", "forcing exit",
		)
	}
	return nil
}
