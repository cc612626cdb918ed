// Package config handles roomview configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source kinds.
const (
	SourceSQLite = "sqlite"
	SourceRedis  = "redis"
)

// Config is the root configuration structure for roomview.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings for the SQLite source
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Source selects where room history comes from
	Source SourceConfig `yaml:"source" mapstructure:"source"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline layout and pagination settings
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// Metrics settings
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// GlobalConfig contains global roomview settings.
type GlobalConfig struct {
	// DataDir is where roomview stores its data (default: ~/.local/share/roomview).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/roomview).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`

	// ServerName qualifies bare user names.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// SourceConfig selects the history backend.
type SourceConfig struct {
	// Kind is sqlite or redis.
	Kind string `yaml:"kind" mapstructure:"kind"`

	// RedisURL is used when Kind is redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The viewer logs only here.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TimelineConfig contains layout and pagination settings.
type TimelineConfig struct {
	// PageSize is the number of events per backlog request.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// Merge is never or consecutive.
	Merge string `yaml:"merge" mapstructure:"merge"`

	// BlockMargin and BlockSpacing are in rows/columns. Zero derives them
	// from the font.
	BlockMargin  int `yaml:"block_margin" mapstructure:"block_margin"`
	BlockSpacing int `yaml:"block_spacing" mapstructure:"block_spacing"`

	// SingleStep is the scroll distance of one wheel notch or arrow key.
	SingleStep int `yaml:"single_step" mapstructure:"single_step"`

	// TimeZone names the zone for time labels. Empty means local time.
	TimeZone string `yaml:"time_zone" mapstructure:"time_zone"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often the live edge is polled.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// User is the user id messages are posted as.
	User string `yaml:"user" mapstructure:"user"`
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr serves /metrics while the viewer runs. Empty disables it.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:    filepath.Join(homeDir, ".local", "share", "roomview"),
			ConfigDir:  filepath.Join(homeDir, ".config", "roomview"),
			ServerName: "local",
		},
		Database: DatabaseConfig{
			Path:          "", // Will be set to DataDir/roomview.db
			BusyTimeoutMs: 5000,
		},
		Source: SourceConfig{
			Kind: SourceSQLite,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Timeline: TimelineConfig{
			PageSize:     100,
			Merge:        "never",
			BlockMargin:  1,
			BlockSpacing: 1,
			SingleStep:   3,
		},
		TUI: TUIConfig{
			RefreshInterval: time.Second,
			Theme:           "default",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSQLite:
	case SourceRedis:
		if strings.TrimSpace(c.Source.RedisURL) == "" {
			return fmt.Errorf("source.redis_url is required when source.kind is redis")
		}
	default:
		return fmt.Errorf("source.kind must be one of sqlite, redis")
	}

	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must not be negative")
	}

	if c.Timeline.PageSize < 1 || c.Timeline.PageSize > 1000 {
		return fmt.Errorf("timeline.page_size must be between 1 and 1000")
	}

	switch c.Timeline.Merge {
	case "never", "consecutive":
	default:
		return fmt.Errorf("timeline.merge must be one of never, consecutive")
	}

	if c.Timeline.BlockMargin < 0 || c.Timeline.BlockSpacing < 0 {
		return fmt.Errorf("timeline.block_margin and timeline.block_spacing must not be negative")
	}

	if c.Timeline.SingleStep < 1 {
		return fmt.Errorf("timeline.single_step must be at least 1")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timeline.time_zone: %w", err)
	}

	if c.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval must be at least 100ms")
	}

	switch c.TUI.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("tui.theme must be one of default, high-contrast")
	}

	return nil
}

// Location resolves the time zone for time labels.
func (c *Config) Location() (*time.Location, error) {
	zone := strings.TrimSpace(c.Timeline.TimeZone)
	if zone == "" || zone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(zone)
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "roomview.db")
}

// ContextPath returns the path of the saved CLI context.
func (c *Config) ContextPath() string {
	return filepath.Join(c.Global.ConfigDir, "context.yaml")
}
