//go:build !windows

package miniplayer

import "fyne.io/fyne/v2"

// Other platforms rely on the splash window staying above its parent.
func applyNativeTopmost(fyne.Window, float64) {}
