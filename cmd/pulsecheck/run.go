package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/pulsecheck/internal/server"
)

// errTargetsDown is returned by run --fail-on-down when any target is down.
var errTargetsDown = errors.New("one or more targets are down")

// runCmd performs one check invocation and prints the envelope.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check every target once",
	Long: `Check every configured target once, send alerts for down targets and
print the result as JSON on stdout.

Exit codes:
  0 - Run completed (targets may still be down unless --fail-on-down is set)
  1 - Config error, alert dispatch failure, or down targets with --fail-on-down

Example:
  pulsecheck run -c config.yaml
  pulsecheck run -c config.yaml --fail-on-down`,
	SilenceUsage: true,
	RunE:         runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	runCmd.Flags().Bool("fail-on-down", false, "exit with status 1 when any target is down")
	_ = runCmd.MarkFlagRequired("config")
}

func runOnce(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	failOnDown, _ := cmd.Flags().GetBool("fail-on-down")

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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env := server.Execute(ctx, checker, dispatcher)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if env.Alert.Error != "" {
		return errors.New(env.Alert.Error)
	}
	if failOnDown && !env.Report.AllOK {
		return errTargetsDown
	}
	return nil
}
