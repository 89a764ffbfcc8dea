// Package main is the entry point for the pulsecheck CLI.
//
// pulsecheck can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	pulsecheck run -c config.yaml      # Check every target once and print the result
//	pulsecheck serve -c config.yaml    # Serve the check endpoint over HTTP
//	pulsecheck validate -c config.yaml # Validate configuration
//	pulsecheck version                 # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpalmerr/pulsecheck/config"
	"github.com/jpalmerr/pulsecheck/internal/logger"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings holds flag and environment overrides. Keys use the flag names;
// environment variables use the PULSECHECK_ prefix, e.g. PULSECHECK_LOG_LEVEL.
var settings = viper.New()

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "pulsecheck",
	Short: "One-shot HTTP health checks with alerting",
	Long: `pulsecheck probes a list of HTTP targets once, retries failures with
exponential backoff, and reports which targets are down. Down targets are
announced by email and Telegram when those channels are configured.

Quick start:
  1. Create a config file (pulsecheck.yaml)
  2. Run: pulsecheck run -c pulsecheck.yaml
  3. Or serve it: pulsecheck serve -c pulsecheck.yaml and POST /api/check

Example config:
  concurrency: 5
  targets:
    - name: GitHub API
      url: https://api.github.com
      expect: 2xx`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env file is normal
		_ = godotenv.Load()
	},
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this pulsecheck binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pulsecheck %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "log level: debug, info, warn or error (overrides the config file)")
	flags.String("log-format", "", "log format: json or text (overrides the config file)")

	_ = settings.BindPFlag("log-level", flags.Lookup("log-level"))
	_ = settings.BindPFlag("log-format", flags.Lookup("log-format"))

	settings.SetEnvPrefix("PULSECHECK")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
}

// newLogger builds the CLI logger from the config file, with flags and
// environment taking precedence.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if v := settings.GetString("log-level"); v != "" {
		level = v
	}
	format := cfg.Logging.Format
	if v := settings.GetString("log-format"); v != "" {
		format = v
	}

	l, err := logger.New(level, format, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return l, nil
}
