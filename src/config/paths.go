package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
	LogDir       string
}

// GetDefaultStoragePaths returns default storage paths using XDG base
// directories. Runtime state (the transcript database, logs) lives under
// XDG_STATE_HOME per the Base Directory specification.
func GetDefaultStoragePaths() StoragePaths {
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, "prismium", "chats.db"),
		LogDir:       filepath.Join(xdg.StateHome, "prismium", "logs"),
	}
}

// GetDefaultConfigPath returns the default config file location under
// XDG_CONFIG_HOME.
func GetDefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "prismium", "config.json")
}
