package session

import (
	"fmt"
	"time"
)

// Mode is the active phase of a focus session.
type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
	ModeCustom     Mode = "custom"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeFocus, ModeShortBreak, ModeLongBreak, ModeCustom}

// Label returns a human readable mode name.
func (mode Mode) Label() string {
	switch mode {
	case ModeFocus:
		return "Focus"
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	case ModeCustom:
		return "Custom"
	default:
		return string(mode)
	}
}

// Valid reports whether mode is one of the known modes.
func (mode Mode) Valid() bool {
	switch mode {
	case ModeFocus, ModeShortBreak, ModeLongBreak, ModeCustom:
		return true
	}
	return false
}

// Phase is the position of the timer in its state machine.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseExpired Phase = "expired"
)

// State is an immutable snapshot of a session. Active implies a non-zero
// EndAt; an inactive state keeps Remaining frozen. Alerting is set while
// an unacknowledged completion is being signalled.
type State struct {
	Mode          Mode
	Phase         Phase
	Duration      time.Duration
	Remaining     time.Duration
	EndAt         time.Time
	Active        bool
	Muted         bool
	Alerting      bool
	Ambient       bool
	Task          string
	CustomMinutes int
	Seq           uint64
}

// DurationSeconds returns the configured length in whole seconds.
func (state State) DurationSeconds() int {
	return int(state.Duration / time.Second)
}

// RemainingSeconds returns the remaining time in whole seconds.
func (state State) RemainingSeconds() int {
	return int(state.Remaining / time.Second)
}

// Progress returns the elapsed fraction of the session in [0,1].
func (state State) Progress() float64 {
	if state.Duration <= 0 {
		return 1
	}
	progress := float64(state.Duration-state.Remaining) / float64(state.Duration)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// Clock formats the remaining time as MM:SS, or H:MM:SS past an hour.
func (state State) Clock() string {
	total := state.RemainingSeconds()
	hours, minutes, seconds := total/3600, total/60%60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// remainingUntil rounds the time left before endAt up to whole seconds.
func remainingUntil(endAt, now time.Time) time.Duration {
	left := endAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return (left + time.Second - 1) / time.Second * time.Second
}
