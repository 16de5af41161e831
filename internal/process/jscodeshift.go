// Package process builds the external commands the wrapper runs.
package process

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Fixed jscodeshift invocation flags. Babel's legacy transform mode is off
// and every file is parsed as TSX.
const (
	Parser     = "tsx"
	Extensions = "tsx"
	Verbosity  = "1"
)

// JSCodeshiftConfig holds configuration for a jscodeshift run.
type JSCodeshiftConfig struct {
	// NodePath is the node executable.
	NodePath string

	// ScriptPath is jscodeshift's CLI entry (jscodeshift/bin/jscodeshift.js).
	ScriptPath string

	// TransformPath is the transform module passed with -t.
	TransformPath string

	// WorkDir is the child's working directory.
	WorkDir string

	// DerivedArgs are flags computed by the wrapper, e.g. --ignore-config.
	DerivedArgs []string

	// UserArgs are passed through verbatim, after everything else.
	UserArgs []string
}

// JSCodeshiftRunner builds the jscodeshift command for the supervisor.
type JSCodeshiftRunner struct {
	config *JSCodeshiftConfig
}

// NewJSCodeshiftRunner creates a runner for the given configuration.
func NewJSCodeshiftRunner(cfg *JSCodeshiftConfig) *JSCodeshiftRunner {
	return &JSCodeshiftRunner{
		config: cfg,
	}
}

// Name returns "jscodeshift".
func (r *JSCodeshiftRunner) Name() string {
	return "jscodeshift"
}

// BuildCommand creates an exec.Cmd running jscodeshift under node.
// Standard streams are left unset for the supervisor to attach.
func (r *JSCodeshiftRunner) BuildCommand(ctx context.Context) (*exec.Cmd, error) {
	if r.config.NodePath == "" {
		return nil, errors.New("node path is not set")
	}
	if r.config.ScriptPath == "" {
		return nil, errors.New("jscodeshift script path is not set")
	}
	if r.config.TransformPath == "" {
		return nil, errors.New("transform path is not set")
	}

	cmd := exec.CommandContext(ctx, r.config.NodePath, r.buildArgs()...)
	cmd.Dir = r.config.WorkDir
	return cmd, nil
}

// buildArgs constructs node's argument vector: the jscodeshift script, the
// fixed flags, the transform, derived flags, and finally the user's
// arguments so they can override anything before them.
func (r *JSCodeshiftRunner) buildArgs() []string {
	args := make([]string, 0, 8+len(r.config.DerivedArgs)+len(r.config.UserArgs))
	args = append(args,
		r.config.ScriptPath,
		"--no-babel",
		"--parser="+Parser,
		"--extensions="+Extensions,
		"-v", Verbosity,
		"-t", r.config.TransformPath,
	)
	args = append(args, r.config.DerivedArgs...)
	args = append(args, r.config.UserArgs...)
	return args
}

// Config returns the jscodeshift configuration.
func (r *JSCodeshiftRunner) Config() *JSCodeshiftConfig {
	return r.config
}

// CommandString returns the command that would be executed (for debugging).
func (r *JSCodeshiftRunner) CommandString() string {
	return r.config.NodePath + " " + strings.Join(r.buildArgs(), " ")
}
