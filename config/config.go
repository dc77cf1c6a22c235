// Package config loads the settings of the cellfmt command: engine locale and
// cache size, logging, and export defaults.  Settings come from defaults, an
// optional JSON or YAML file, then CELLFMT_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Export  ExportConfig  `json:"export" yaml:"export"`
}

// EngineConfig holds format engine settings
type EngineConfig struct {
	CacheSize int    `json:"cache_size" yaml:"cache_size"`
	Locale    string `json:"locale" yaml:"locale"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ExportConfig holds defaults for the render command
type ExportConfig struct {
	Workers  int    `json:"workers" yaml:"workers"`
	Sheet    string `json:"sheet" yaml:"sheet"`
	Encoding string `json:"encoding" yaml:"encoding"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			CacheSize: 512,
			Locale:    "en-US",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Workers:  4,
			Sheet:    "Sheet1",
			Encoding: "utf-8",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, &config); err != nil {
			return config, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnvironmentConfig(&config); err != nil {
		return config, fmt.Errorf("failed to load environment config: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadConfigFile loads configuration from JSON or YAML file
func loadConfigFile(configPath string, config *Config) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	// Try JSON first
	if err := json.Unmarshal(data, config); err != nil {
		if yamlErr := yaml.Unmarshal(data, config); yamlErr != nil {
			return fmt.Errorf("failed to parse config as JSON or YAML: %v, %v", err, yamlErr)
		}
	}

	return nil
}

// loadEnvironmentConfig loads configuration overrides from environment variables
func loadEnvironmentConfig(config *Config) error {
	if logLevel := os.Getenv("CELLFMT_LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("CELLFMT_LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}
	if locale := os.Getenv("CELLFMT_LOCALE"); locale != "" {
		config.Engine.Locale = locale
	}
	if size := os.Getenv("CELLFMT_CACHE_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return fmt.Errorf("CELLFMT_CACHE_SIZE: %w", err)
		}
		config.Engine.CacheSize = n
	}
	return nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config Config) error {
	if config.Engine.CacheSize < 0 {
		return fmt.Errorf("invalid cache size: %d", config.Engine.CacheSize)
	}
	if _, err := config.Engine.Tag(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	if config.Export.Workers < 1 {
		return fmt.Errorf("invalid export workers: %d", config.Export.Workers)
	}
	return nil
}

// Tag parses the configured locale.  An empty locale is en-US.
func (c EngineConfig) Tag() (language.Tag, error) {
	if c.Locale == "" {
		return language.AmericanEnglish, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return tag, nil
}
