// Package metrics provides Prometheus metrics for go-suppress-eslint-errors.
//
// The wrapper is a one-shot process, so nothing is served over HTTP. The
// gauges describe the latest run and can be written in the text exposition
// format for node_exporter's textfile collector (see WriteTextfile).
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "suppress_eslint_errors"

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version  string
	PeerTool string
}

// Collector records the outcome of one wrapper run.
type Collector struct {
	registry *prometheus.Registry

	info                *prometheus.GaugeVec
	preflightPassed     prometheus.Gauge
	ignoreConfigApplied prometheus.Gauge
	childDuration       prometheus.Gauge
	childExitCode       prometheus.Gauge
	childSignaled       *prometheus.GaugeVec
	exitCode            prometheus.Gauge
	lastRun             prometheus.Gauge
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.NewRegistry())
}

// NewCollectorWithRegistry creates a collector registered on registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry *prometheus.Registry) *Collector {
	c := &Collector{
		registry: registry,

		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "info",
				Help:      "Information about the wrapper (value always 1)",
			},
			[]string{"version", "peer_tool"},
		),

		preflightPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "preflight_passed",
			Help:      "1 if every preflight check passed, 0 otherwise",
		}),

		ignoreConfigApplied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ignore_config_applied",
			Help:      "1 if --ignore-config was passed to jscodeshift",
		}),

		childDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "child_duration_seconds",
			Help:      "Wall-clock time the jscodeshift child ran",
		}),

		childExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "child_exit_code",
			Help:      "Exit status of the child (-1 when killed by a signal)",
		}),

		childSignaled: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "child_signaled",
				Help:      "1 for the signal that terminated the child",
			},
			[]string{"signal"},
		),

		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "exit_code",
			Help:      "Exit code of the wrapper itself",
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished",
		}),
	}

	registry.MustRegister(
		c.info,
		c.preflightPassed,
		c.ignoreConfigApplied,
		c.childDuration,
		c.childExitCode,
		c.childSignaled,
		c.exitCode,
		c.lastRun,
	)

	c.info.WithLabelValues(cfg.Version, cfg.PeerTool).Set(1)

	return c
}

// RecordPreflight records whether the preflight checks passed.
func (c *Collector) RecordPreflight(passed bool) {
	c.preflightPassed.Set(boolToFloat(passed))
}

// RecordIgnoreConfig records whether the ignore-config flag was derived.
func (c *Collector) RecordIgnoreConfig(applied bool) {
	c.ignoreConfigApplied.Set(boolToFloat(applied))
}

// RecordChildExit records how the child ended. signal is empty for a
// normal exit.
func (c *Collector) RecordChildExit(exitCode int, signal string, uptime time.Duration) {
	c.childDuration.Set(uptime.Seconds())
	c.childExitCode.Set(float64(exitCode))
	if signal != "" {
		c.childSignaled.WithLabelValues(signal).Set(1)
	}
}

// RecordResult records the wrapper's own exit code and stamps the run.
func (c *Collector) RecordResult(exitCode int) {
	c.exitCode.Set(float64(exitCode))
	c.lastRun.SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
