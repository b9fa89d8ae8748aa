package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PRISMIUM_"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the effective configuration: defaults, then the config file at
// path (skipped when absent), then environment overrides, then validation.
// An empty path means the default XDG location.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = GetDefaultConfigPath()
	}

	if err := mergeFile(cfg, path); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
