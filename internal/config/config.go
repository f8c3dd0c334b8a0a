// Package config loads factoryledger settings from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g.
// FACTORYLEDGER_STORE_PATH for store.path.
const EnvPrefix = "FACTORYLEDGER"

// Config is the main configuration struct combining all sub-configs.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig locates the CUE catalog.
type CatalogConfig struct {
	// Dir is a directory of .cue files. Commands that need a catalog fail
	// when it is empty and no --catalog flag is given.
	Dir string `mapstructure:"dir"`
}

// StoreConfig locates the SQLite store.
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (factoryledger.yaml in the working directory, or configPath)
// 3. Defaults (lowest priority)
//
// A missing default config file is fine; a missing explicit configPath is
// an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("factoryledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register every key so AutomaticEnv applies to it during Unmarshal.
	defaults := Default()
	v.SetDefault("catalog.dir", defaults.Catalog.Dir)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
