package preferences

import (
	"time"

	"focusdeck/internal/audio"
	"focusdeck/internal/core/model"
)

const (
	MinAmbientLevel = 0.02
	MaxAmbientLevel = 0.3
	MinMiniOpacity  = 0.6
	MaxMiniOpacity  = 1.0
	maxModeMinutes  = 180
)

// Settings defines editable user preferences.
type Settings struct {
	FocusMinutes      int
	ShortBreakMinutes int
	LongBreakMinutes  int
	CustomMinutes     int
	Muted             bool

	ReducedMotion     bool
	AmbientLevel      float64
	MiniPlayerOpacity float64
}

// DefaultSettings returns default settings for FocusDeck.
func DefaultSettings() Settings {
	return Settings{
		FocusMinutes:      25,
		ShortBreakMinutes: 5,
		LongBreakMinutes:  15,
		CustomMinutes:     30,
		AmbientLevel:      0.12,
		MiniPlayerOpacity: 0.92,
	}
}

// Normalized clamps every value into its accepted range.
func (settings Settings) Normalized() Settings {
	defaults := DefaultSettings()
	settings.FocusMinutes = clampMinutes(settings.FocusMinutes, defaults.FocusMinutes)
	settings.ShortBreakMinutes = clampMinutes(settings.ShortBreakMinutes, defaults.ShortBreakMinutes)
	settings.LongBreakMinutes = clampMinutes(settings.LongBreakMinutes, defaults.LongBreakMinutes)
	settings.CustomMinutes = model.ClampCustomMinutes(settings.CustomMinutes)
	if settings.AmbientLevel < MinAmbientLevel {
		settings.AmbientLevel = MinAmbientLevel
	}
	if settings.AmbientLevel > MaxAmbientLevel {
		settings.AmbientLevel = MaxAmbientLevel
	}
	if settings.MiniPlayerOpacity < MinMiniOpacity {
		settings.MiniPlayerOpacity = MinMiniOpacity
	}
	if settings.MiniPlayerOpacity > MaxMiniOpacity {
		settings.MiniPlayerOpacity = MaxMiniOpacity
	}
	return settings
}

// SessionConfig converts settings to the timer configuration.
func (settings Settings) SessionConfig() model.SessionConfig {
	settings = settings.Normalized()
	return model.SessionConfig{
		Modes: model.ModeDurations{
			Focus:      time.Duration(settings.FocusMinutes) * time.Minute,
			ShortBreak: time.Duration(settings.ShortBreakMinutes) * time.Minute,
			LongBreak:  time.Duration(settings.LongBreakMinutes) * time.Minute,
		},
		CustomMinutes: settings.CustomMinutes,
		Muted:         settings.Muted,
	}
}

// NoiseConfig converts settings to the ambient noise configuration.
func (settings Settings) NoiseConfig() audio.NoiseConfig {
	config := audio.DefaultNoiseConfig()
	config.Level = settings.Normalized().AmbientLevel
	return config
}

func clampMinutes(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	if value > maxModeMinutes {
		return maxModeMinutes
	}
	return value
}
