// Package config handles configuration loading and management for
// convene. It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for convene.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Retry      RetryConfig      `mapstructure:"retry"`
	History    HistoryConfig    `mapstructure:"history"`
	Validation ValidationConfig `mapstructure:"validation"`
	Templates  TemplatesConfig  `mapstructure:"templates"`
}

// AnthropicConfig holds Anthropic API settings for the LLM-backed step
// executor.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// RetryConfig holds the step retry policy used under the retry
// error-handling mode.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
}

// HistoryConfig holds execution-history settings.
type HistoryConfig struct {
	// Limit bounds the in-memory history; zero means unbounded.
	Limit int `mapstructure:"limit"`
	// DBPath points at the SQLite history database. Empty disables
	// persistence.
	DBPath string `mapstructure:"db_path"`
}

// ValidationConfig holds default aggregation validation thresholds.
type ValidationConfig struct {
	MaxConflicts  int     `mapstructure:"max_conflicts"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// TemplatesConfig holds assembly template settings.
type TemplatesConfig struct {
	// Dir is the directory holding assembly YAML templates.
	Dir string `mapstructure:"dir"`
	// Watch reloads templates on file changes when true.
	Watch bool `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.convene.yaml in current directory or parent)
// 3. User config (~/.config/convene/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.Set("retry.initial_backoff", cfg.Retry.InitialBackoff.String())
	v.Set("history.limit", cfg.History.Limit)
	v.Set("history.db_path", cfg.History.DBPath)
	v.Set("validation.max_conflicts", cfg.Validation.MaxConflicts)
	v.Set("validation.min_confidence", cfg.Validation.MinConfidence)
	v.Set("templates.dir", cfg.Templates.Dir)
	v.Set("templates.watch", cfg.Templates.Watch)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff", "100ms")

	v.SetDefault("history.limit", 1000)
	v.SetDefault("history.db_path", "")

	v.SetDefault("validation.max_conflicts", 3)
	v.SetDefault("validation.min_confidence", 0.7)

	v.SetDefault("templates.dir", "assemblies")
	v.SetDefault("templates.watch", false)
}

// getUserConfigDir returns the XDG config directory for convene.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "convene")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "convene")
	}
	return filepath.Join(home, ".config", "convene")
}

// findProjectConfig searches for .convene.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".convene.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 100 * time.Millisecond,
		},
		History: HistoryConfig{
			Limit: 1000,
		},
		Validation: ValidationConfig{
			MaxConflicts:  3,
			MinConfidence: 0.7,
		},
		Templates: TemplatesConfig{
			Dir: "assemblies",
		},
	}
}
