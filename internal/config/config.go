// Package config provides configuration management for capbridge with Viper integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration for the capability bridge.
type Config struct {
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Dispatch     DispatchConfig     `mapstructure:"dispatch" yaml:"dispatch"`
	Permissions  PermissionsConfig  `mapstructure:"permissions" yaml:"permissions"`
	Capabilities CapabilitiesConfig `mapstructure:"capabilities" yaml:"capabilities"`
	Facade       FacadeConfig       `mapstructure:"facade" yaml:"facade"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DispatchConfig holds call dispatch configuration.
type DispatchConfig struct {
	// CallTimeout bounds every one-shot capability call. After it fires a
	// Timeout failure is delivered and any late adapter result is discarded.
	CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
}

// PermissionsConfig holds permission gate configuration.
type PermissionsConfig struct {
	// DatabasePath locates the SQLite store for persisted decisions.
	// Empty disables persistence; states then live only in process memory.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// PromptTimeout bounds how long a permission prompt may stay unanswered
	// before the pending calls fail.
	PromptTimeout time.Duration `mapstructure:"prompt_timeout" yaml:"prompt_timeout"`
}

// CapabilitiesConfig toggles individual capability groups. A disabled group is
// registered as unavailable; calls fail with capability_unavailable without
// reaching an adapter. Mirrors the engine-side feature switches.
type CapabilitiesConfig struct {
	ClipboardEnabled     bool `mapstructure:"clipboard_enabled" yaml:"clipboard_enabled"`
	ShareEnabled         bool `mapstructure:"share_enabled" yaml:"share_enabled"`
	NotificationsEnabled bool `mapstructure:"notifications_enabled" yaml:"notifications_enabled"`
	GeolocationEnabled   bool `mapstructure:"geolocation_enabled" yaml:"geolocation_enabled"`
	VibrationEnabled     bool `mapstructure:"vibration_enabled" yaml:"vibration_enabled"`
	BatteryEnabled       bool `mapstructure:"battery_enabled" yaml:"battery_enabled"`
	NetworkEnabled       bool `mapstructure:"network_enabled" yaml:"network_enabled"`
	OrientationEnabled   bool `mapstructure:"orientation_enabled" yaml:"orientation_enabled"`
}

// FacadeConfig controls the injected script facade.
type FacadeConfig struct {
	// HandlerName is the script message handler the facade posts calls to.
	HandlerName string `mapstructure:"handler_name" yaml:"handler_name"`

	// GlobalName is the window property the facade installs its API under.
	GlobalName string `mapstructure:"global_name" yaml:"global_name"`
}

// ConfigDir returns the capbridge configuration directory.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "capbridge"), nil
}

// DataDir returns the capbridge data directory (permission store lives here).
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "capbridge"), nil
}

// Load reads configuration from the config file (if present), environment
// variables prefixed with CAPBRIDGE_, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAPBRIDGE")
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigFilePath returns the expected path of the config file, whether or not
// it exists.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
