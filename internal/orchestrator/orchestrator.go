// Package orchestrator runs one wrapper invocation end to end: preflight,
// flag derivation, child supervision and result interpretation.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/config"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/diag"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/ignorefile"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/metrics"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/preflight"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/process"
	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/supervisor"
)

// Orchestrator coordinates a single run.
type Orchestrator struct {
	config    *config.Config
	logger    *slog.Logger
	reporter  diag.Reporter
	resolver  *preflight.Resolver
	collector *metrics.Collector

	// Streams handed to the child. stdout also receives the banner.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStreams overrides the standard streams given to the child.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(o *Orchestrator) {
		o.stdin = stdin
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithResolver overrides the Node module resolver.
func WithResolver(r *preflight.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithCollector overrides the metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(o *Orchestrator) {
		o.collector = c
	}
}

// New creates an orchestrator with the given configuration.
func New(cfg *config.Config, logger *slog.Logger, reporter diag.Reporter, version string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config:   cfg,
		logger:   logger,
		reporter: reporter,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.resolver == nil {
		o.resolver = preflight.NewResolver()
	}
	if o.collector == nil {
		o.collector = metrics.NewCollector(metrics.CollectorConfig{
			Version:  version,
			PeerTool: cfg.PeerTool,
		})
	}
	return o
}

// Run executes the wrapper with the user's arguments and returns the final
// result. It blocks until the child exits.
//
// A non-nil error is an unexpected I/O failure (for example an unreadable
// .gitignore); the caller should treat it as a failed run.
func (o *Orchestrator) Run(ctx context.Context, args []string) (supervisor.Result, error) {
	result, err := o.run(ctx, args)
	if err != nil {
		return supervisor.Result{}, err
	}

	o.collector.RecordResult(result.ExitCode)
	o.writeMetrics()
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, args []string) (supervisor.Result, error) {
	checks := preflight.RunAll(o.resolver, preflight.Config{
		WorkDir:         o.config.WorkDir,
		InstallDir:      o.config.InstallDir,
		PeerTool:        o.config.PeerTool,
		NodePath:        o.config.NodePath,
		JSCodeshiftPath: o.config.JSCodeshiftPath,
		TransformPath:   o.config.TransformPath,
	})
	preflight.LogResults(o.logger, checks)
	o.collector.RecordPreflight(checks.Passed)
	if failed := checks.Failed(); failed != nil {
		return supervisor.Failure(failed.Diagnostics()...), nil
	}

	o.printBanner(args)

	derived, err := ignorefile.Derive(o.config.WorkDir, ignorefile.DefaultName, o.reporter)
	if err != nil {
		return supervisor.Result{}, err
	}
	o.collector.RecordIgnoreConfig(len(derived) > 0)
	o.logger.Debug("ignore_flags_derived", "flags", derived)

	runner := process.NewJSCodeshiftRunner(&process.JSCodeshiftConfig{
		NodePath:      checks.Node,
		ScriptPath:    checks.JSCodeshift,
		TransformPath: checks.Transform,
		WorkDir:       o.config.WorkDir,
		DerivedArgs:   derived,
		UserArgs:      args,
	})
	o.logger.Debug("child_command", "command", runner.CommandString())

	sup := supervisor.New(supervisor.Config{
		Builder: runner,
		Logger:  o.logger,
		Stdin:   o.stdin,
		Stdout:  o.stdout,
		Stderr:  o.stderr,
		Callbacks: supervisor.Callbacks{
			OnExit: func(outcome supervisor.Outcome, uptime time.Duration) {
				signal := ""
				if outcome.Signaled() {
					signal = outcome.Signal.String()
				}
				o.collector.RecordChildExit(outcome.ExitCode, signal, uptime)
			},
		},
	})

	outcome, err := sup.Run(ctx)
	if err != nil {
		return supervisor.Failure(fmt.Sprintf("failed to run %s: %v", runner.Name(), err)), nil
	}

	return supervisor.Interpret(outcome), nil
}

// printBanner echoes the paths being processed before the child's output.
func (o *Orchestrator) printBanner(args []string) {
	fmt.Fprintln(o.stdout, "Processing", args)
	fmt.Fprintln(o.stdout, "========")
}

// writeMetrics exports the run's metrics when a textfile is configured.
// Failures are logged and never change the exit code.
func (o *Orchestrator) writeMetrics() {
	if o.config.MetricsTextfile == "" {
		return
	}
	if err := o.collector.WriteTextfile(o.config.MetricsTextfile); err != nil {
		o.logger.Warn("metrics_textfile_failed", "path", o.config.MetricsTextfile, "error", err)
	}
}
