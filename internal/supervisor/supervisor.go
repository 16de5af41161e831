// Package supervisor runs the child process to completion and turns the way
// it ended into the wrapper's exit code.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

// CommandBuilder creates the command to supervise.
// Commands must be created with exec.CommandContext.
type CommandBuilder interface {
	// BuildCommand returns a ready-to-start command.
	BuildCommand(ctx context.Context) (*exec.Cmd, error)

	// Name returns a human-readable name for this process type.
	Name() string
}

// Callbacks contains optional callback functions for supervisor events.
type Callbacks struct {
	// OnStart is called when the child process starts.
	OnStart func(pid int)

	// OnExit is called when the child process exits.
	OnExit func(outcome Outcome, uptime time.Duration)
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Builder   CommandBuilder
	Logger    *slog.Logger
	Callbacks Callbacks

	// Standard streams for the child. Nil means the wrapper's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Supervisor runs a single child process with inherited standard streams.
type Supervisor struct {
	builder   CommandBuilder
	logger    *slog.Logger
	callbacks Callbacks

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a new Supervisor with the given configuration.
func New(cfg Config) *Supervisor {
	s := &Supervisor{
		builder:   cfg.Builder,
		logger:    cfg.Logger,
		callbacks: cfg.Callbacks,
		stdin:     cfg.Stdin,
		stdout:    cfg.Stdout,
		stderr:    cfg.Stderr,
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run starts the child and blocks until it exits. There is no timeout.
//
// Cancelling ctx sends SIGTERM to the child, which then shows up in the
// returned Outcome. An interrupt delivered to the wrapper while the child
// runs is ignored: the terminal already sent it to the child as well.
//
// An error is returned only when the child could not be run at all.
func (s *Supervisor) Run(ctx context.Context) (Outcome, error) {
	name := s.builder.Name()

	cmd, err := s.builder.BuildCommand(ctx)
	if err != nil {
		s.logger.Error("failed_to_build_command", "process", name, "error", err)
		return Outcome{}, fmt.Errorf("build %s command: %w", name, err)
	}

	cmd.Stdin = s.stdin
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr
	cmd.Cancel = func() error {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		s.logger.Error("failed_to_start_process", "process", name, "error", err)
		return Outcome{}, fmt.Errorf("start %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	s.logger.Info("child_started", "process", name, "pid", pid)

	if s.callbacks.OnStart != nil {
		s.callbacks.OnStart(pid)
	}

	waitErr := cmd.Wait()
	uptime := time.Since(startTime)

	if cmd.ProcessState == nil {
		s.logger.Error("failed_to_wait_process", "process", name, "pid", pid, "error", waitErr)
		return Outcome{}, fmt.Errorf("wait %s: %w", name, waitErr)
	}

	outcome := extractOutcome(cmd.ProcessState)

	attrs := []any{
		"process", name,
		"pid", pid,
		"exit_code", outcome.ExitCode,
		"uptime", uptime.String(),
	}
	if outcome.Signaled() {
		attrs = append(attrs, "signal", outcome.Signal.String())
	}
	s.logger.Info("child_exited", attrs...)

	if s.callbacks.OnExit != nil {
		s.callbacks.OnExit(outcome, uptime)
	}

	return outcome, nil
}
