// Package main provides the suppress-eslint-errors CLI entry point.
//
// suppress-eslint-errors runs jscodeshift with a transform that adds
// eslint-disable comments for every current eslint error. All arguments are
// passed to jscodeshift unchanged; the wrapper itself is configured through
// SUPPRESS_ESLINT_ERRORS_* environment variables.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/config"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/diag"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/logging"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/orchestrator"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/suppress-eslint-errors
var version = "dev"

func main() {
	os.Exit(run())
}

// run is the only place that decides the exit code. Everything below it
// returns results instead of exiting.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	logger := logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	logging.SetDefault(logger)

	args := os.Args[1:]
	logger.Debug("starting",
		"version", version,
		"work_dir", cfg.WorkDir,
		"install_dir", cfg.InstallDir,
		"args", args,
	)

	// SIGTERM to the wrapper is forwarded to the child through ctx.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	console := diag.Default()
	orch := orchestrator.New(cfg, logger, console, version)

	result, err := orch.Run(ctx, args)
	if err != nil {
		logger.Error("run_failed", "error", err)
		return 1
	}

	for _, msg := range result.Messages {
		console.Error(msg)
	}
	return result.ExitCode
}
