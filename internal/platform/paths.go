package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDir returns the per-user configuration directory for appName.
func ConfigDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return filepath.Join(configDir, appName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// DataDir returns the per-user data directory for appName, honoring
// XDG_DATA_HOME when set.
func DataDir(appName string) (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "", fmt.Errorf("get data dir: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

// TaskDBPath returns the default location of the task database.
func TaskDBPath(appName string) (string, error) {
	dataDir, err := DataDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "tasks.db"), nil
}
