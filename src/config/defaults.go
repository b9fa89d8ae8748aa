package config

import "time"

// DefaultConfig returns the baseline configuration before file and
// environment overrides.
func DefaultConfig() *Config {
	paths := GetDefaultStoragePaths()
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr:     ":8787",
			TokenTTL: 24 * time.Hour,
		},
		Storage: StorageConfig{
			DatabasePath: paths.DatabasePath,
		},
		History: HistoryConfig{
			DebounceInterval: time.Second,
		},
		LogLevel: "warn",
	}
}
