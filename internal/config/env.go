package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment keys, without EnvPrefix.
const (
	keyWorkDir         = "work_dir"
	keyInstallDir      = "install_dir"
	keyPeerTool        = "peer_tool"
	keyNode            = "node"
	keyJSCodeshift     = "jscodeshift"
	keyTransform       = "transform"
	keyLogFormat       = "log_format"
	keyLogLevel        = "log_level"
	keyVerbose         = "verbose"
	keyMetricsTextfile = "metrics_textfile"
)

// Load builds a Config from SUPPRESS_ESLINT_ERRORS_* environment variables,
// falling back to DefaultConfig and the process working directory and
// executable location.
func Load() (*Config, error) {
	return LoadFrom(newViper())
}

// LoadFrom builds a Config from an already configured viper instance.
// Useful for testing.
func LoadFrom(v *viper.Viper) (*Config, error) {
	def := DefaultConfig()
	v.SetDefault(keyPeerTool, def.PeerTool)
	v.SetDefault(keyNode, def.NodePath)
	v.SetDefault(keyLogFormat, def.LogFormat)
	v.SetDefault(keyLogLevel, def.LogLevel)
	v.SetDefault(keyVerbose, def.Verbose)

	cfg := &Config{
		WorkDir:         v.GetString(keyWorkDir),
		InstallDir:      v.GetString(keyInstallDir),
		PeerTool:        v.GetString(keyPeerTool),
		NodePath:        v.GetString(keyNode),
		JSCodeshiftPath: v.GetString(keyJSCodeshift),
		TransformPath:   v.GetString(keyTransform),
		LogFormat:       v.GetString(keyLogFormat),
		LogLevel:        v.GetString(keyLogLevel),
		Verbose:         v.GetBool(keyVerbose),
		MetricsTextfile: v.GetString(keyMetricsTextfile),
	}

	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	if cfg.InstallDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to locate executable: %w", err)
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		cfg.InstallDir = filepath.Dir(exe)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}
