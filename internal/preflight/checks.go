// Package preflight verifies that everything the wrapper shells out to is
// installed before anything is launched.
package preflight

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/randomizedcoder/go-suppress-eslint-errors/internal/config"
)

// Check names other than the peer tool, which is named after the tool itself.
const (
	CheckNode        = "node"
	CheckJSCodeshift = "jscodeshift"
	CheckTransform   = "transform"
)

// Module requests resolved when no override is configured.
const (
	JSCodeshiftRequest = "jscodeshift/bin/jscodeshift.js"
	TransformRequest   = "suppress-eslint-errors/transforms/suppress-eslint-errors.js"
)

// bundledTransform is where the transform sits relative to the install dir
// when the wrapper is installed as the package's bin/ entry.
var bundledTransform = filepath.Join("..", "transforms", "suppress-eslint-errors.js")

// Config holds the inputs for the preflight checks.
type Config struct {
	WorkDir         string
	InstallDir      string
	PeerTool        string
	NodePath        string
	JSCodeshiftPath string // override, skips resolution
	TransformPath   string // override, skips resolution
}

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Path    string // Resolved location, if found
	Message string // Additional context
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Diagnostics returns the error messages shown to the user for a failed
// check: what is missing and how to fix it. Passed checks return nil.
func (c Check) Diagnostics() []string {
	if c.Passed {
		return nil
	}
	return []string{
		fmt.Sprintf("%s was not found.", c.Name),
		suggestFix(c.Name),
	}
}

// Result holds the results of the preflight checks that ran.
type Result struct {
	Checks []Check
	Passed bool

	// Resolved locations, valid when Passed.
	Node        string
	JSCodeshift string
	Transform   string
}

// Failed returns the check that stopped the run, or nil.
func (r *Result) Failed() *Check {
	for i := range r.Checks {
		if !r.Checks[i].Passed {
			return &r.Checks[i]
		}
	}
	return nil
}

// RunAll executes the preflight checks in order, stopping at the first
// failure. The peer tool is always checked first.
func RunAll(resolver *Resolver, cfg Config) *Result {
	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}

	steps := []func() Check{
		func() Check { return checkPeerTool(resolver, cfg.WorkDir, cfg.PeerTool) },
		func() Check { return checkNode(cfg.NodePath) },
		func() Check { return checkJSCodeshift(resolver, cfg) },
		func() Check { return checkTransform(resolver, cfg) },
	}

	for _, step := range steps {
		check := step()
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
			return result
		}
		switch check.Name {
		case CheckNode:
			result.Node = check.Path
		case CheckJSCodeshift:
			result.JSCodeshift = check.Path
		case CheckTransform:
			result.Transform = check.Path
		}
	}

	return result
}

// checkPeerTool verifies the peer tool resolves as a module from workDir.
func checkPeerTool(resolver *Resolver, workDir, name string) Check {
	path, ok := resolver.Resolve(workDir, name)
	if !ok {
		return Check{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("not resolvable from %s", workDir),
		}
	}
	return Check{
		Name:    name,
		Passed:  true,
		Path:    path,
		Message: fmt.Sprintf("found at %s", path),
	}
}

// checkNode verifies node is available and working.
func checkNode(path string) Check {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return Check{
			Name:    CheckNode,
			Passed:  false,
			Message: fmt.Sprintf("not found at %s: %v", path, err),
		}
	}

	output, err := exec.Command(resolved, "--version").Output()
	if err != nil {
		return Check{
			Name:    CheckNode,
			Passed:  false,
			Message: fmt.Sprintf("%s --version failed: %v", resolved, err),
		}
	}

	// "v20.11.1"
	version := "unknown"
	if fields := strings.Fields(string(output)); len(fields) > 0 {
		version = fields[0]
	}

	return Check{
		Name:    CheckNode,
		Passed:  true,
		Path:    resolved,
		Message: fmt.Sprintf("found at %s (version %s)", resolved, version),
	}
}

// checkJSCodeshift locates the jscodeshift CLI script, next to the wrapper
// first and then in the working directory.
func checkJSCodeshift(resolver *Resolver, cfg Config) Check {
	if cfg.JSCodeshiftPath != "" {
		return checkOverride(CheckJSCodeshift, cfg.JSCodeshiftPath)
	}
	return resolveFrom(resolver, CheckJSCodeshift, JSCodeshiftRequest, cfg.InstallDir, cfg.WorkDir)
}

// checkTransform locates the transform module: the override, the copy
// bundled beside the install dir, then the published package.
func checkTransform(resolver *Resolver, cfg Config) Check {
	if cfg.TransformPath != "" {
		return checkOverride(CheckTransform, cfg.TransformPath)
	}
	if cfg.InstallDir != "" {
		bundled := filepath.Clean(filepath.Join(cfg.InstallDir, bundledTransform))
		if isFile(bundled) {
			return Check{
				Name:    CheckTransform,
				Passed:  true,
				Path:    bundled,
				Message: fmt.Sprintf("bundled at %s", bundled),
			}
		}
	}
	return resolveFrom(resolver, CheckTransform, TransformRequest, cfg.InstallDir, cfg.WorkDir)
}

func checkOverride(name, path string) Check {
	if !isFile(path) {
		return Check{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("configured path %s does not exist", path),
		}
	}
	return Check{
		Name:    name,
		Passed:  true,
		Path:    path,
		Message: fmt.Sprintf("configured at %s", path),
	}
}

func resolveFrom(resolver *Resolver, name, request string, bases ...string) Check {
	var tried []string
	for _, base := range bases {
		if base == "" {
			continue
		}
		tried = append(tried, base)
		if path, ok := resolver.Resolve(base, request); ok {
			return Check{
				Name:    name,
				Passed:  true,
				Path:    path,
				Message: fmt.Sprintf("found at %s", path),
			}
		}
	}
	return Check{
		Name:    name,
		Passed:  false,
		Message: fmt.Sprintf("%s not resolvable from %s", request, strings.Join(tried, ", ")),
	}
}

// LogResults logs every check that ran at debug level, and the failing one
// at warn.
func LogResults(logger *slog.Logger, result *Result) {
	for _, check := range result.Checks {
		if check.Passed {
			logger.Debug("preflight_check", "name", check.Name, "path", check.Path, "message", check.Message)
			continue
		}
		logger.Warn("preflight_check_failed", "name", check.Name, "message", check.Message)
	}
}

// suggestFix returns the second diagnostic line for a failed check.
func suggestFix(name string) string {
	switch name {
	case CheckNode:
		return fmt.Sprintf("suppress-eslint-errors requires Node.js; install it or set %s_NODE.", config.EnvPrefix)
	case CheckJSCodeshift:
		return fmt.Sprintf("suppress-eslint-errors requires jscodeshift to be installed alongside it or in the working directory (or set %s_JSCODESHIFT).", config.EnvPrefix)
	case CheckTransform:
		return fmt.Sprintf("suppress-eslint-errors could not locate its transform (set %s_TRANSFORM).", config.EnvPrefix)
	default:
		return fmt.Sprintf("suppress-eslint-errors requires %s to be installed in the working directory.", name)
	}
}
