package animation

import (
	"image/color"
	"time"
)

// DefaultConfig returns slow scene drift and a one-second alarm pulse.
func DefaultConfig() Config {
	return Config{
		SceneHold: Range{
			Min: 8 * time.Second,
			Max: 14 * time.Second,
		},
		PulseOn: Range{
			Min: 450 * time.Millisecond,
			Max: 550 * time.Millisecond,
		},
		PulseOff: Range{
			Min: 450 * time.Millisecond,
			Max: 550 * time.Millisecond,
		},
	}
}

// NightRain is the default ambient backdrop.
func NightRain() Scene {
	return Scene{
		Name: "Night rain",
		Palettes: []Palette{
			{Top: color.NRGBA{R: 24, G: 32, B: 58, A: 255}, Bottom: color.NRGBA{R: 10, G: 12, B: 22, A: 255}},
			{Top: color.NRGBA{R: 30, G: 44, B: 70, A: 255}, Bottom: color.NRGBA{R: 12, G: 18, B: 30, A: 255}},
			{Top: color.NRGBA{R: 38, G: 36, B: 72, A: 255}, Bottom: color.NRGBA{R: 14, G: 12, B: 28, A: 255}},
		},
	}
}
