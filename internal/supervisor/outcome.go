package supervisor

import (
	"fmt"
	"os"
	"syscall"
)

// ExitFailure is the wrapper's exit code for every failure it reports itself.
const ExitFailure = 1

// Diagnostics for a child that was stopped by a signal.
const (
	MsgKilled = "The script failed because the process exited too early. " +
		"This probably means the system ran out of memory or someone called " +
		"`kill -9` on the process."

	MsgTerminated = "The script failed because the process exited too early. " +
		"Someone might have called `kill` or `killall`, or the system could " +
		"be shutting down."
)

// Outcome is how the child process ended: either a normal exit with a
// status code, or termination by a signal.
type Outcome struct {
	ExitCode int       // -1 when Signal is set
	Signal   os.Signal // nil for a normal exit
}

// Signaled reports whether the child was terminated by a signal.
func (o Outcome) Signaled() bool {
	return o.Signal != nil
}

// String returns a human-readable description of the outcome.
func (o Outcome) String() string {
	if o.Signaled() {
		return "signal: " + o.Signal.String()
	}
	return fmt.Sprintf("exit status %d", o.ExitCode)
}

// Result is the wrapper's final answer: the code to exit with and the
// error-level diagnostics to print first.
type Result struct {
	ExitCode int
	Messages []string
}

// Failure builds a Result for a wrapper-detected failure.
func Failure(messages ...string) Result {
	return Result{ExitCode: ExitFailure, Messages: messages}
}

// Interpret translates a child outcome into the wrapper's result.
//
// A normal exit propagates the child's status silently; the child has
// already reported its own errors. Any signal fails with ExitFailure. SIGKILL
// and SIGTERM carry an explanation; other signals carry none.
func Interpret(o Outcome) Result {
	if !o.Signaled() {
		return Result{ExitCode: o.ExitCode}
	}

	switch o.Signal {
	case syscall.SIGKILL:
		return Failure(MsgKilled)
	case syscall.SIGTERM:
		return Failure(MsgTerminated)
	default:
		return Failure()
	}
}

// extractOutcome reads the outcome from a finished process.
func extractOutcome(state *os.ProcessState) Outcome {
	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return Outcome{ExitCode: -1, Signal: status.Signal()}
	}
	return Outcome{ExitCode: state.ExitCode()}
}
