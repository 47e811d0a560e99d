package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"formatlink/pkg/errors"

	"gopkg.in/yaml.v3"
)

const DefaultFormat = "Markdown"

// Clipboard modes. Auto picks direct for plain text and the copy-event path
// otherwise.
const (
	ClipboardAuto      = "auto"
	ClipboardDirect    = "direct"
	ClipboardEvent     = "event"
	ClipboardOffscreen = "offscreen"
)

var clipboardModes = []string{ClipboardAuto, ClipboardDirect, ClipboardEvent, ClipboardOffscreen}

// Config holds the complete configuration
type Config struct {
	Format    string          `yaml:"format"`
	Notify    bool            `yaml:"notify"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	History   HistoryConfig   `yaml:"history"`
	Database  string          `yaml:"database,omitempty"`
	// PromptMessage overrides the default content prompt.
	PromptMessage string `yaml:"prompt_message,omitempty"`
}

type ClipboardConfig struct {
	Mode string `yaml:"mode"`
}

type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit,omitempty"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Format:    DefaultFormat,
		Notify:    false,
		Clipboard: ClipboardConfig{Mode: ClipboardAuto},
		History:   HistoryConfig{Enabled: true, Limit: 50},
	}
}

// Load loads the configuration from the default path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeConfig, "failed to get config path", err)
	}
	return loadFromPath(configPath)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "formatlink", "config.yaml"), nil
}

// Save saves the configuration to file
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return saveToPath(configPath, cfg)
}

func saveToPath(configPath string, cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to write config file", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func loadFromPath(configPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadConfigFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile reads and parses the config file from the given path
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		// Missing file means defaults plus env vars
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.NewWithError(errors.ExitCodeConfig, "failed to parse config file", err)
	}

	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to the config
func applyEnvironmentOverrides(cfg *Config) {
	cfg.Format = getEnv("FORMATLINK_FORMAT", cfg.Format)
	cfg.Notify = getEnvBool("FORMATLINK_NOTIFY", cfg.Notify)
	cfg.Clipboard.Mode = strings.ToLower(getEnv("FORMATLINK_CLIPBOARD_MODE", cfg.Clipboard.Mode))
	cfg.History.Enabled = getEnvBool("FORMATLINK_HISTORY", cfg.History.Enabled)
	cfg.Database = getEnv("FORMATLINK_DB", cfg.Database)
}

// validateConfig ensures all required configuration fields are set
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Format) == "" {
		return errors.ConfigError("default format not configured. Set format in the config file or FORMATLINK_FORMAT")
	}
	if cfg.Clipboard.Mode == "" {
		cfg.Clipboard.Mode = ClipboardAuto
	}
	valid := false
	for _, m := range clipboardModes {
		if cfg.Clipboard.Mode == m {
			valid = true
			break
		}
	}
	if !valid {
		return errors.ConfigError(fmt.Sprintf("invalid clipboard mode '%s'. Use one of: %s",
			cfg.Clipboard.Mode, strings.Join(clipboardModes, ", ")))
	}
	if cfg.History.Limit < 0 {
		return errors.ConfigError("history limit must not be negative")
	}
	return nil
}
