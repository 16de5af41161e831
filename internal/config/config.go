// Package config provides configuration management for go-suppress-eslint-errors.
//
// Every command-line argument belongs to jscodeshift, so the wrapper's own
// settings come from the environment (see Load).
package config

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "SUPPRESS_ESLINT_ERRORS"

// Config holds the settings for a single wrapper invocation.
type Config struct {
	// Locations
	WorkDir    string `json:"work_dir"`    // where the child runs and eslint is resolved from
	InstallDir string `json:"install_dir"` // directory holding the wrapper executable

	// Tools
	PeerTool        string `json:"peer_tool"`        // Node module that must be installed in WorkDir
	NodePath        string `json:"node_path"`        // node executable
	JSCodeshiftPath string `json:"jscodeshift_path"` // empty = resolve jscodeshift/bin/jscodeshift.js
	TransformPath   string `json:"transform_path"`   // empty = resolve the bundled transform

	// Observability
	LogFormat       string `json:"log_format"` // json, text
	LogLevel        string `json:"log_level"`
	Verbose         bool   `json:"verbose"`
	MetricsTextfile string `json:"metrics_textfile"` // empty = disabled
}

// DefaultConfig returns a Config with sensible defaults.
// WorkDir and InstallDir are left empty; Load fills them from the process.
func DefaultConfig() *Config {
	return &Config{
		PeerTool:  "eslint",
		NodePath:  "node",
		LogFormat: "text",
		LogLevel:  "warn",
	}
}
