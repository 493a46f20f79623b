// Package config provides configuration parsing for opspulse.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file written and read inside the config
// directory.
const DefaultFileName = "config.yaml"

// Config represents the opspulse service and dashboard configuration.
type Config struct {
	// Monitoring holds sampling settings.
	Monitoring MonitoringConfig `yaml:"monitoring"`

	// Storage holds metrics history settings.
	Storage StorageConfig `yaml:"storage"`

	// Web holds the HTTP server settings.
	Web WebConfig `yaml:"web"`

	// Dashboard holds the terminal dashboard settings.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Logs holds log output settings.
	Logs LogsConfig `yaml:"logs"`
}

// MonitoringConfig holds sampling settings.
type MonitoringConfig struct {
	// Interval is a duration string (e.g. "5s") between samples.
	Interval string `yaml:"interval"`
	// AnomalyThreshold is the utilization percentage above which a metric
	// is reported as anomalous.
	AnomalyThreshold float64 `yaml:"anomaly_threshold"`
}

// StorageConfig holds metrics history settings.
type StorageConfig struct {
	// Dir is the directory holding the metrics history file.
	Dir string `yaml:"dir"`
	// MaxRecords caps how many samples the history retains.
	MaxRecords int `yaml:"max_records"`
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	// Host is the listen address.
	Host string `yaml:"host"`
	// Port is the listen port.
	Port int `yaml:"port"`
}

// DashboardConfig holds the terminal dashboard settings.
type DashboardConfig struct {
	// URL is the metrics endpoint the dashboard polls.
	URL string `yaml:"url"`
	// PollInterval is a duration string between polls.
	PollInterval string `yaml:"poll_interval"`
	// Window is the number of points each rolling chart retains.
	Window int `yaml:"window"`
}

// LogsConfig holds log output settings.
type LogsConfig struct {
	// Dir is the directory for the daemon log and the notification log.
	Dir string `yaml:"dir"`
}

// DefaultConfig returns a Config populated with the stock defaults.
func DefaultConfig() *Config {
	return &Config{
		Monitoring: MonitoringConfig{
			Interval:         "5s",
			AnomalyThreshold: 90,
		},
		Storage: StorageConfig{
			Dir:        "data",
			MaxRecords: 1000,
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Dashboard: DashboardConfig{
			URL:          "http://127.0.0.1:8080/metrics",
			PollInterval: "5s",
			Window:       20,
		},
		Logs: LogsConfig{
			Dir: "logs",
		},
	}
}

// Load reads configuration from a YAML file, merging with defaults. An empty
// path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// WriteDefault writes the default configuration to dir/config.yaml, creating
// the directory if needed. An existing file is left untouched and its path
// returned.
func WriteDefault(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("config: marshal defaults: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}

	return path, nil
}

// SampleInterval returns the parsed monitoring interval, falling back to 5s
// for empty or invalid values.
func (c *Config) SampleInterval() time.Duration {
	return parseDuration(c.Monitoring.Interval, 5*time.Second)
}

// PollInterval returns the parsed dashboard poll interval, falling back to 5s.
func (c *Config) PollInterval() time.Duration {
	return parseDuration(c.Dashboard.PollInterval, 5*time.Second)
}

// ListenAddr returns the host:port the web server binds.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

// Validate checks the configuration for logical consistency.
func (c *Config) Validate() error {
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("config: web.port %d out of range", c.Web.Port)
	}
	if c.Storage.MaxRecords < 1 {
		return fmt.Errorf("config: storage.max_records must be positive, got %d", c.Storage.MaxRecords)
	}
	if c.Dashboard.Window < 1 {
		return fmt.Errorf("config: dashboard.window must be positive, got %d", c.Dashboard.Window)
	}
	if c.Monitoring.AnomalyThreshold <= 0 || c.Monitoring.AnomalyThreshold > 100 {
		return fmt.Errorf("config: monitoring.anomaly_threshold must be in (0, 100], got %v", c.Monitoring.AnomalyThreshold)
	}
	if _, err := time.ParseDuration(c.Monitoring.Interval); err != nil {
		return fmt.Errorf("config: monitoring.interval %q: %w", c.Monitoring.Interval, err)
	}
	if _, err := time.ParseDuration(c.Dashboard.PollInterval); err != nil {
		return fmt.Errorf("config: dashboard.poll_interval %q: %w", c.Dashboard.PollInterval, err)
	}
	return nil
}

// parseDuration parses a duration string, returning fallback for empty or
// invalid values.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
