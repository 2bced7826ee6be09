package model

import "time"

const (
	MinCustomMinutes = 1
	MaxCustomMinutes = 180
)

// ModeDurations holds the fixed length of each preset mode.
type ModeDurations struct {
	Focus      time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
}

// SessionConfig contains runtime settings for the session timer.
type SessionConfig struct {
	Modes         ModeDurations
	CustomMinutes int
	Muted         bool
}

// DefaultSessionConfig returns the classic 25/5/15 layout.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Modes: ModeDurations{
			Focus:      25 * time.Minute,
			ShortBreak: 5 * time.Minute,
			LongBreak:  15 * time.Minute,
		},
		CustomMinutes: 30,
	}
}

// ClampCustomMinutes bounds a custom duration to [1,180] minutes.
func ClampCustomMinutes(minutes int) int {
	if minutes < MinCustomMinutes {
		return MinCustomMinutes
	}
	if minutes > MaxCustomMinutes {
		return MaxCustomMinutes
	}
	return minutes
}
