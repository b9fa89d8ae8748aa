package config

import "time"

// Config represents the complete configuration for prismium
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// History workflow configuration
	History HistoryConfig `json:"history"`

	// LogLevel controls slog verbosity
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

// ServerConfig defines the HTTP API settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" validate:"required"`

	// JWTSecret signs and verifies session bearer tokens
	JWTSecret string `json:"jwt_secret"`

	// TokenTTL is the lifetime of minted dev tokens
	TokenTTL time.Duration `json:"token_ttl,omitempty"`
}

// StorageConfig defines where the transcript database lives
type StorageConfig struct {
	// DatabasePath is the sqlite file path
	DatabasePath string `json:"database_path" validate:"required"`
}

// HistoryConfig tunes the conversation-history workflows
type HistoryConfig struct {
	// DebounceInterval is the quiescent window of the debounced writer
	DebounceInterval time.Duration `json:"debounce_interval,omitempty"`
}
