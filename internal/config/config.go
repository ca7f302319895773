// Package config holds the qflow configuration, loaded through viper
// from a config file, environment variables (QFLOW_ prefix), and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete qflow configuration
type Config struct {
	Paths        PathsConfig        `mapstructure:"paths"`
	Matcher      MatcherConfig      `mapstructure:"matcher"`
	Continuation ContinuationConfig `mapstructure:"continuation"`
	Hooks        HooksConfig        `mapstructure:"hooks"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// PathsConfig controls where queue state lives on disk
type PathsConfig struct {
	// QueueDir is the directory holding all queue state
	// (default: ~/.claude/queue)
	QueueDir string `mapstructure:"queue_dir"`
	// TasksFile overrides the active tasks file path (default: <queue_dir>/tasks.json)
	TasksFile string `mapstructure:"tasks_file"`
	// HistoryFile overrides the history file path (default: <queue_dir>/history.json)
	HistoryFile string `mapstructure:"history_file"`
	// ContextFile overrides the session context file path (default: <queue_dir>/session_context.json)
	ContextFile string `mapstructure:"context_file"`
	// FlagFile overrides the auto-continuation flag path (default: <queue_dir>/.auto_continue)
	FlagFile string `mapstructure:"flag_file"`
}

// MatcherConfig controls session-to-task matching
type MatcherConfig struct {
	// Threshold is the minimum match score (0.0-1.0) for a queued task
	// to be reported as matching the session context (default: 0.3)
	Threshold float64 `mapstructure:"threshold"`
}

// ContinuationConfig controls the auto-continuation flag
type ContinuationConfig struct {
	// TTLSeconds is how long a continuation flag stays valid (default: 300)
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// HooksConfig controls hook behavior
type HooksConfig struct {
	// TrackReads also records files from Read tool uses (default: false)
	TrackReads bool `mapstructure:"track_reads"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled turns file logging on (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
}

// TTL returns the continuation TTL as a time.Duration
func (c *ContinuationConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ResolveQueueDir returns the configured queue directory, resolving the
// default against the user's home directory.
func (p *PathsConfig) ResolveQueueDir() string {
	if p.QueueDir != "" {
		return expandHome(p.QueueDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude/queue"
	}
	return filepath.Join(home, ".claude", "queue")
}

// ResolveTasksFile returns the tasks file path.
func (p *PathsConfig) ResolveTasksFile() string {
	return p.resolve(p.TasksFile, "tasks.json")
}

// ResolveHistoryFile returns the history file path.
func (p *PathsConfig) ResolveHistoryFile() string {
	return p.resolve(p.HistoryFile, "history.json")
}

// ResolveContextFile returns the session context file path.
func (p *PathsConfig) ResolveContextFile() string {
	return p.resolve(p.ContextFile, "session_context.json")
}

// ResolveFlagFile returns the auto-continuation flag file path.
func (p *PathsConfig) ResolveFlagFile() string {
	return p.resolve(p.FlagFile, ".auto_continue")
}

func (p *PathsConfig) resolve(override, name string) string {
	if override != "" {
		return expandHome(override)
	}
	return filepath.Join(p.ResolveQueueDir(), name)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			QueueDir: "", // Empty means use default: ~/.claude/queue
		},
		Matcher: MatcherConfig{
			Threshold: 0.3,
		},
		Continuation: ContinuationConfig{
			TTLSeconds: 300, // 5 minutes
		},
		Hooks: HooksConfig{
			TrackReads: false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("paths.queue_dir", defaults.Paths.QueueDir)
	viper.SetDefault("paths.tasks_file", defaults.Paths.TasksFile)
	viper.SetDefault("paths.history_file", defaults.Paths.HistoryFile)
	viper.SetDefault("paths.context_file", defaults.Paths.ContextFile)
	viper.SetDefault("paths.flag_file", defaults.Paths.FlagFile)

	viper.SetDefault("matcher.threshold", defaults.Matcher.Threshold)

	viper.SetDefault("continuation.ttl_seconds", defaults.Continuation.TTLSeconds)

	viper.SetDefault("hooks.track_reads", defaults.Hooks.TrackReads)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if
// unmarshaling fails
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks configuration values for sanity
func (c *Config) Validate() error {
	if c.Matcher.Threshold < 0 || c.Matcher.Threshold > 1 {
		return fmt.Errorf("matcher.threshold must be between 0.0 and 1.0, got %v", c.Matcher.Threshold)
	}
	if c.Continuation.TTLSeconds < 0 {
		return fmt.Errorf("continuation.ttl_seconds must not be negative, got %d", c.Continuation.TTLSeconds)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "qflow")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qflow"
	}
	return filepath.Join(home, ".config", "qflow")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
