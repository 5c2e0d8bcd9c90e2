// Package config loads tool configuration with viper. Settings come
// from an optional config file, VOGUE_-prefixed environment variables,
// and built-in defaults, in that override order.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the fully resolved tool configuration.
type Config struct {
	// ProjectsRoot holds one subdirectory per project.
	ProjectsRoot string `mapstructure:"projects_root"`

	// User is stamped on mutations. Defaults to $USER.
	User string `mapstructure:"user"`

	Log   LogConfig   `mapstructure:"log"`
	Scan  ScanConfig  `mapstructure:"scan"`
	Index IndexConfig `mapstructure:"index"`

	// DCCRegistry is an optional TOML registry path.
	DCCRegistry string `mapstructure:"dcc_registry"`
}

// LogConfig controls the rotating log file. Console output is separate
// and always on.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ScanConfig controls the watch daemon.
type ScanConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// IndexConfig controls the SQLite query cache.
type IndexConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Debounce returns the configured debounce as a duration.
func (s ScanConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Load resolves configuration. path may be empty, in which case
// vogue.yaml is searched in the working directory and ~/.config/vogue.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOGUE")
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault("projects_root", filepath.Join(home, "VogueProjects"))
	v.SetDefault("user", os.Getenv("USER"))
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("scan.debounce_ms", 500)
	v.SetDefault("index.enabled", true)
	v.SetDefault("dcc_registry", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		v.SetConfigName("vogue")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home != "" {
			v.AddConfigPath(filepath.Join(home, ".config", "vogue"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.User == "" {
		cfg.User = "unknown"
	}
	return &cfg, nil
}

// NewLogger returns a logger writing to the configured rotating file,
// or to stderr when no file is set.
func (c *Config) NewLogger(prefix string) *log.Logger {
	if c.Log.File == "" {
		return log.New(os.Stderr, prefix, log.LstdFlags)
	}
	return log.New(&lumberjack.Logger{
		Filename:   c.Log.File,
		MaxSize:    c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}, prefix, log.LstdFlags)
}
