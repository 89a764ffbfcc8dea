package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/pulsecheck"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// start mock server (see mock_server.go)
	base, err := startMockHealthServer(ctx)
	if err != nil {
		logger.Error("failed to start mock server", "error", err)
		os.Exit(1)
	}

	// grid API: 4 services × 2 envs = 8 targets from one declaration
	targets, err := pulsecheck.NewTargetGrid("API",
		pulsecheck.WithURLTemplate(base+"/health?svc={{.svc}}&env={{.env}}"),
		pulsecheck.WithDimensions(map[string][]string{
			"svc": {"users", "orders", "legacy", "billing"},
			"env": {"prod", "staging"},
		}),
		pulsecheck.WithGridMaxRetries(2),
		pulsecheck.WithGridTimeout(2*time.Second),
	)
	if err != nil {
		logger.Error("failed to create target grid", "error", err)
		os.Exit(1)
	}

	// billing is in maintenance and answers 500 on purpose
	maintenance, _ := pulsecheck.NewTarget(base+"/health?svc=billing&env=maint",
		pulsecheck.WithName("Billing (maintenance)"),
		pulsecheck.WithRule(pulsecheck.In(500)),
		pulsecheck.WithMaxRetries(0),
	)
	targets = append(targets, maintenance)

	checker, err := pulsecheck.New(
		pulsecheck.WithTargets(targets...),
		pulsecheck.WithConcurrency(3),
		pulsecheck.WithLogger(logger),
		pulsecheck.WithResultCallback(func(r pulsecheck.TargetResult) {
			mark := "UP  "
			if !r.OK {
				mark = "DOWN"
			}
			fmt.Printf("  %s %-28s attempts=%d last=%d\n", mark, r.Name, r.AttemptCount, r.LastAttempt.StatusCode)
		}),
	)
	if err != nil {
		logger.Error("failed to create checker", "error", err)
		os.Exit(1)
	}
	defer checker.Close()

	report := checker.Run(ctx)

	fmt.Println()
	fmt.Printf("  %d checked, %d up, %d down\n\n", report.Totals.Checked, report.Totals.Up, report.Totals.Down)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report.Down)
}
