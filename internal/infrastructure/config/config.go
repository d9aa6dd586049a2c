// Package config loads the daemon configuration from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/tickwake/alarmd/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
}

// StorageConfig contains database settings
type StorageConfig struct {
	// Path of the SQLite database; empty means the per-user default.
	Path string `yaml:"path"`
}

// ScheduleConfig contains wake-scheduling settings
type ScheduleConfig struct {
	// PreviewEnabled arranges the secondary "upcoming alarm" trigger.
	PreviewEnabled bool `yaml:"preview_enabled"`

	// PreviewLead is how far before the fire the preview wakes up.
	PreviewLead time.Duration `yaml:"preview_lead"`

	// SafetyNetInterval is the period of the reconciliation safety net.
	SafetyNetInterval time.Duration `yaml:"safety_net_interval"`
}

// PlaybackConfig contains playback policy settings
type PlaybackConfig struct {
	// VolumeKeys is the hardware volume-key policy while an alarm
	// fires: none, stop, snooze or adjust.
	VolumeKeys string `yaml:"volume_keys"`

	// TimeFormat24h selects 24h clock formatting in notifications.
	TimeFormat24h bool `yaml:"time_format_24h"`

	// DefaultSound is the WAV played for alarms without a sound URI.
	DefaultSound string `yaml:"default_sound"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Schedule: ScheduleConfig{
			PreviewEnabled:    true,
			PreviewLead:       30 * time.Minute,
			SafetyNetInterval: 24 * time.Hour,
		},
		Playback: PlaybackConfig{
			VolumeKeys:    "none",
			TimeFormat24h: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, nil
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Schedule.PreviewLead < 0 {
		return fmt.Errorf("invalid preview lead: %s", c.Schedule.PreviewLead)
	}

	if c.Schedule.SafetyNetInterval < time.Minute {
		return fmt.Errorf("safety net interval too short: %s", c.Schedule.SafetyNetInterval)
	}

	switch c.Playback.VolumeKeys {
	case "none", "stop", "snooze", "adjust":
	default:
		return fmt.Errorf("invalid volume_keys: %q (must be none, stop, snooze or adjust)", c.Playback.VolumeKeys)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}

	return nil
}

// Save saves the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// VolumeKeyBehavior returns the typed volume-key policy.
func (c *Config) VolumeKeyBehavior() domain.VolumeKeyBehavior {
	return domain.VolumeKeyBehavior(c.Playback.VolumeKeys)
}

// LogLevel returns the slog level for the configured level string.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
