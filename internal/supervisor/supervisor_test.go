package supervisor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/logging"
)

// shellBuilder runs a POSIX shell script as the child.
type shellBuilder struct {
	script string
	err    error
}

func (b *shellBuilder) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	if b.err != nil {
		return nil, b.err
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", b.script), nil
}

func (b *shellBuilder) Name() string { return "sh" }

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh and POSIX signals")
	}
}

func newTestSupervisor(script string, stdout, stderr *bytes.Buffer) *Supervisor {
	return New(Config{
		Builder: &shellBuilder{script: script},
		Logger:  logging.Discard(),
		Stdin:   strings.NewReader(""),
		Stdout:  stdout,
		Stderr:  stderr,
	})
}

func TestSupervisor_Run_ExitCodes(t *testing.T) {
	requireShell(t)

	for _, code := range []int{0, 1, 3, 127, 255} {
		t.Run("exit_"+strconv.Itoa(code), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			s := newTestSupervisor("exit "+strconv.Itoa(code), &stdout, &stderr)

			outcome, err := s.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if outcome.Signaled() {
				t.Errorf("outcome %v should not be signaled", outcome)
			}
			if outcome.ExitCode != code {
				t.Errorf("ExitCode = %d, want %d", outcome.ExitCode, code)
			}

			r := Interpret(outcome)
			if r.ExitCode != code || len(r.Messages) != 0 {
				t.Errorf("Interpret() = %+v, want exit %d without messages", r, code)
			}
		})
	}
}

func TestSupervisor_Run_Signals(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name    string
		script  string
		signal  syscall.Signal
		wantMsg string
	}{
		{"SIGKILL", "kill -KILL $$", syscall.SIGKILL, MsgKilled},
		{"SIGTERM", "kill -TERM $$", syscall.SIGTERM, MsgTerminated},
		{"SIGHUP", "kill -HUP $$", syscall.SIGHUP, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			s := newTestSupervisor(tt.script, &stdout, &stderr)

			outcome, err := s.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if outcome.Signal != tt.signal {
				t.Fatalf("Signal = %v, want %v", outcome.Signal, tt.signal)
			}

			r := Interpret(outcome)
			if r.ExitCode != 1 {
				t.Errorf("ExitCode = %d, want 1", r.ExitCode)
			}
			if tt.wantMsg == "" {
				if len(r.Messages) != 0 {
					t.Errorf("Messages = %v, want none", r.Messages)
				}
				return
			}
			if len(r.Messages) != 1 || r.Messages[0] != tt.wantMsg {
				t.Errorf("Messages = %v, want [%q]", r.Messages, tt.wantMsg)
			}
		})
	}
}

func TestSupervisor_Run_InheritsStreams(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	s := New(Config{
		Builder: &shellBuilder{script: "read line; echo \"out:$line\"; echo err >&2"},
		Logger:  logging.Discard(),
		Stdin:   strings.NewReader("hello\n"),
		Stdout:  &stdout,
		Stderr:  &stderr,
	})

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := stdout.String(); got != "out:hello\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := stderr.String(); got != "err\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestSupervisor_Run_CancelSendsSIGTERM(t *testing.T) {
	requireShell(t)

	var stdout, stderr bytes.Buffer
	started := make(chan struct{})
	s := New(Config{
		// exec replaces the shell so the signal reaches sleep directly.
		Builder: &shellBuilder{script: "exec sleep 30"},
		Logger:  logging.Discard(),
		Stdin:   strings.NewReader(""),
		Stdout:  &stdout,
		Stderr:  &stderr,
		Callbacks: Callbacks{
			OnStart: func(pid int) { close(started) },
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-started
		cancel()
	}()

	done := make(chan Outcome, 1)
	go func() {
		outcome, err := s.Run(ctx)
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
		done <- outcome
	}()

	select {
	case outcome := <-done:
		if outcome.Signal != syscall.SIGTERM {
			t.Errorf("Signal = %v, want SIGTERM", outcome.Signal)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("child was not terminated after cancel")
	}
}

func TestSupervisor_Run_Callbacks(t *testing.T) {
	requireShell(t)

	var started, exited atomic.Int32
	var gotOutcome Outcome
	s := New(Config{
		Builder: &shellBuilder{script: "exit 4"},
		Logger:  logging.Discard(),
		Stdin:   strings.NewReader(""),
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
		Callbacks: Callbacks{
			OnStart: func(pid int) {
				if pid <= 0 {
					t.Errorf("OnStart pid = %d", pid)
				}
				started.Add(1)
			},
			OnExit: func(o Outcome, uptime time.Duration) {
				gotOutcome = o
				exited.Add(1)
			},
		},
	})

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if started.Load() != 1 || exited.Load() != 1 {
		t.Errorf("callbacks: started=%d exited=%d, want 1 each", started.Load(), exited.Load())
	}
	if gotOutcome.ExitCode != 4 {
		t.Errorf("OnExit outcome = %v, want exit 4", gotOutcome)
	}
}

func TestSupervisor_Run_BuildError(t *testing.T) {
	wantErr := errors.New("no script")
	s := New(Config{
		Builder: &shellBuilder{err: wantErr},
		Logger:  logging.Discard(),
	})

	_, err := s.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestSupervisor_Run_StartError(t *testing.T) {
	s := New(Config{
		Builder: missingBuilder{},
		Logger:  logging.Discard(),
	})

	_, err := s.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the executable does not exist")
	}
	if !strings.Contains(err.Error(), "start missing") {
		t.Errorf("error = %v", err)
	}
}

type missingBuilder struct{}

func (missingBuilder) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	return exec.CommandContext(ctx, "/nonexistent/binary/for/test"), nil
}

func (missingBuilder) Name() string { return "missing" }

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Builder: missingBuilder{}})
	if s.stdin == nil || s.stdout == nil || s.stderr == nil {
		t.Error("nil streams should default to the process's own")
	}
	if s.logger == nil {
		t.Error("nil logger should default to slog.Default()")
	}
}
