package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck/config"
)

// validateCmd validates a config file without running any checks.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a pulsecheck configuration file without probing any target.

This command parses the YAML, expands environment variables, validates all
fields and expands grids into targets. Malformed expect rules do not fail
validation (such targets are always reported down) but are listed as
warnings. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  pulsecheck validate -c config.yaml
  pulsecheck validate --config /etc/pulsecheck/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	targets, err := config.BuildTargets(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	direct := len(cfg.Targets)
	fromGrids := len(targets) - direct

	var channels []string
	if cfg.Alert.Email.Enabled() {
		channels = append(channels, "email")
	}
	if cfg.Alert.Telegram.Enabled() {
		channels = append(channels, "telegram")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Concurrency:  %d\n", cfg.Concurrency)
	fmt.Fprintf(out, "  Targets:      %d direct + %d from grids = %d total\n",
		direct, fromGrids, len(targets))
	fmt.Fprintf(out, "  Alerts:       %s\n", describeChannels(channels))
	fmt.Fprintf(out, "  Auth:         %s\n", describeAuth(cfg.Server.AuthToken))

	for _, w := range config.Warnings(cfg) {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}

	return nil
}

func describeChannels(channels []string) string {
	if len(channels) == 0 {
		return "none (down targets are only logged)"
	}
	return strings.Join(channels, ", ")
}

func describeAuth(token string) string {
	if token == "" {
		return "disabled"
	}
	return "bearer token"
}
