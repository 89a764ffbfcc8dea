package main

import (
	"fmt"
	"log/slog"

	"github.com/jpalmerr/pulsecheck"
	"github.com/jpalmerr/pulsecheck/config"
	"github.com/jpalmerr/pulsecheck/internal/alert"
)

// loadConfig reads the file named by the command's --config flag.
func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newChecker converts the config into a ready [pulsecheck.Checker].
// Malformed expect rules are logged, not rejected.
func newChecker(cfg *config.Config, logger *slog.Logger) (*pulsecheck.Checker, error) {
	targets, err := config.BuildTargets(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build targets: %w", err)
	}

	for _, w := range config.Warnings(cfg) {
		logger.Warn("malformed expect rule", "detail", w)
	}

	logger.Info("config loaded",
		"targets", len(cfg.Targets),
		"grids", len(cfg.Grids),
		"total_targets", len(targets),
		"concurrency", cfg.Concurrency,
	)

	checker, err := pulsecheck.New(
		pulsecheck.WithTargets(targets...),
		pulsecheck.WithConcurrency(cfg.Concurrency),
		pulsecheck.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}
	return checker, nil
}

// newDispatcher creates the alert dispatcher for every enabled channel.
func newDispatcher(cfg *config.Config, logger *slog.Logger) (*alert.Dispatcher, error) {
	senders, err := alert.SendersFromConfig(cfg.Alert)
	if err != nil {
		return nil, fmt.Errorf("failed to configure alerts: %w", err)
	}

	d := alert.NewDispatcher(cfg.Alert.SubjectPrefix, logger, senders...)
	logger.Info("alert channels configured", "channels", d.Channels())
	return d, nil
}
