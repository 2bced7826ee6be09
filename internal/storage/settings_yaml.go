package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"focusdeck/internal/platform"
	"focusdeck/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusMinutes      int     `yaml:"focus_minutes"`
	ShortBreakMinutes int     `yaml:"short_break_minutes"`
	LongBreakMinutes  int     `yaml:"long_break_minutes"`
	CustomMinutes     int     `yaml:"custom_minutes"`
	Muted             bool    `yaml:"muted"`
	ReducedMotion     bool    `yaml:"reduced_motion"`
	AmbientLevel      float64 `yaml:"ambient_level"`
	MiniPlayerOpacity float64 `yaml:"mini_player_opacity"`
}

// LoadSettings reads user preferences from the app config directory.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFile(configPath)
}

// LoadSettingsFile reads user preferences from path.
func LoadSettingsFile(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()
	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings.Normalized(), nil
}

// SaveSettings writes user preferences to the app config directory.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsFile(configPath, settings)
}

// SaveSettingsFile writes user preferences to path.
func SaveSettingsFile(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	settings = settings.Normalized()
	fileData := yamlSettings{
		FocusMinutes:      settings.FocusMinutes,
		ShortBreakMinutes: settings.ShortBreakMinutes,
		LongBreakMinutes:  settings.LongBreakMinutes,
		CustomMinutes:     settings.CustomMinutes,
		Muted:             settings.Muted,
		ReducedMotion:     settings.ReducedMotion,
		AmbientLevel:      settings.AmbientLevel,
		MiniPlayerOpacity: settings.MiniPlayerOpacity,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func resolveConfigPath(appName string) (string, error) {
	configDir, err := platform.ConfigDir(appName)
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.FocusMinutes > 0 {
		settings.FocusMinutes = fileData.FocusMinutes
	}
	if fileData.ShortBreakMinutes > 0 {
		settings.ShortBreakMinutes = fileData.ShortBreakMinutes
	}
	if fileData.LongBreakMinutes > 0 {
		settings.LongBreakMinutes = fileData.LongBreakMinutes
	}
	if fileData.CustomMinutes != 0 {
		settings.CustomMinutes = fileData.CustomMinutes
	}
	if fileData.AmbientLevel > 0 {
		settings.AmbientLevel = fileData.AmbientLevel
	}
	if fileData.MiniPlayerOpacity > 0 {
		settings.MiniPlayerOpacity = fileData.MiniPlayerOpacity
	}

	settings.Muted = fileData.Muted
	settings.ReducedMotion = fileData.ReducedMotion
}
