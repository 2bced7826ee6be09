// Package dashboard renders the primary FocusDeck window: the timer
// controls plus the persistent ambient scene pinned over a placeholder.
package dashboard

import (
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	"focusdeck/internal/core/session"
	"focusdeck/internal/ui/anchor"
	"focusdeck/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	// SurfaceID identifies the primary view on the mirror channel.
	SurfaceID = "primary"
	// SceneAnchor names the placeholder the ambient scene follows.
	SceneAnchor = "ambient-scene"
)

// Host is the session API the dashboard drives.
type Host interface {
	Toggle()
	Reset()
	SwitchMode(mode session.Mode)
	SetCustomDuration(minutes int)
	ToggleMute() bool
	ToggleNoise() bool
	AcknowledgeAlarm()
	OpenMirror()
}

// Config contains view behaviour.
type Config struct {
	ReducedMotion bool
	Anchor        anchor.Config
	Animation     animation.Config
	Scene         animation.Scene
}

// DefaultConfig runs anchor frames on the UI goroutine.
func DefaultConfig() Config {
	anchorConfig := anchor.DefaultConfig()
	anchorConfig.Dispatch = fyne.Do
	return Config{
		Anchor:    anchorConfig,
		Animation: animation.DefaultConfig(),
		Scene:     animation.NightRain(),
	}
}

var (
	clockColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	alertColor = color.NRGBA{R: 240, G: 98, B: 86, A: 255}
	dimColor   = color.NRGBA{R: 240, G: 98, B: 86, A: 90}
)

// View is the primary window.
type View struct {
	window fyne.Window
	host   Host
	scene  animation.Scene

	registry    *anchor.Registry
	loop        *anchor.Loop
	backdrop    *canvas.LinearGradient
	sceneEngine *animation.Engine
	pulseEngine *animation.Engine

	mu            sync.Mutex
	reducedMotion bool
	alerting      bool
	cancel        context.CancelFunc
	lastCustom    int

	clock        *canvas.Text
	modeLabel    *widget.Label
	task         *widget.Label
	progress     *widget.ProgressBar
	modeButtons  map[session.Mode]*widget.Button
	custom       *widget.Entry
	customButton *widget.Button
	startButton  *widget.Button
	resetButton  *widget.Button
	ackButton    *widget.Button
	muteButton   *widget.Button
	noiseButtons []*widget.Button
	popOutButton *widget.Button
	placeholder  *canvas.Rectangle
	tabs         *container.AppTabs
	timerTab     *container.TabItem
	ambienceTab  *container.TabItem
}

// New builds the primary window without showing it.
func New(app fyne.App, host Host, config Config) *View {
	window := app.NewWindow("FocusDeck")
	window.SetPadded(false)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	if len(config.Scene.Palettes) == 0 {
		config.Scene = animation.NightRain()
	}

	view := &View{
		window:        window,
		host:          host,
		scene:         config.Scene,
		registry:      anchor.NewRegistry(),
		sceneEngine:   animation.New(config.Animation),
		pulseEngine:   animation.New(config.Animation),
		reducedMotion: config.ReducedMotion,
		modeButtons:   make(map[session.Mode]*widget.Button, len(session.Modes)),
	}

	first := config.Scene.Palettes[0]
	view.backdrop = canvas.NewVerticalGradient(first.Top, first.Bottom)
	view.backdrop.Hide()
	view.loop = anchor.New(config.Anchor, SceneAnchor, view.registry, anchor.NewObjectSurface(view.backdrop))
	view.loop.SetReducedMotion(config.ReducedMotion)

	view.timerTab = container.NewTabItemWithIcon("Timer", theme.HistoryIcon(), view.buildTimerTab())
	view.ambienceTab = container.NewTabItemWithIcon("Ambience", theme.MediaMusicIcon(), view.buildAmbienceTab())
	view.tabs = container.NewAppTabs(view.timerTab, view.ambienceTab)
	view.tabs.OnSelected = view.handleTab
	view.registry.Mount(SceneAnchor, view.placeholder)

	overlay := container.NewWithoutLayout(view.backdrop)
	window.SetContent(container.NewStack(container.NewPadded(view.tabs), overlay))
	window.Resize(fyne.NewSize(440, 560))
	window.SetCloseIntercept(view.Hide)
	return view
}

// ID identifies the view on the mirror channel.
func (view *View) ID() string {
	return SurfaceID
}

// Window returns the underlying Fyne window.
func (view *View) Window() fyne.Window {
	return view.window
}

// Show displays the window and starts the per-frame anchor loop.
func (view *View) Show() {
	view.window.Show()
	view.window.RequestFocus()
	view.startMotion()
}

// Hide hides the window and stops every per-frame task.
func (view *View) Hide() {
	view.stopMotion()
	view.window.Hide()
}

// Close releases the window for good.
func (view *View) Close() {
	view.stopMotion()
	view.window.Close()
}

// SetReducedMotion switches between eased and instant presentation.
func (view *View) SetReducedMotion(enabled bool) {
	view.mu.Lock()
	view.reducedMotion = enabled
	running := view.cancel != nil
	alerting := view.alerting
	view.mu.Unlock()

	view.loop.SetReducedMotion(enabled)
	if running {
		view.startScene()
	}
	view.updatePulse(alerting)
}

// Render shows state. Safe to call from any goroutine.
func (view *View) Render(state session.State) {
	fyne.Do(func() {
		view.renderUnsafe(state)
	})
}

func (view *View) buildTimerTab() fyne.CanvasObject {
	view.modeLabel = widget.NewLabelWithStyle(session.ModeFocus.Label(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	view.clock = canvas.NewText("--:--", clockColor)
	view.clock.Alignment = fyne.TextAlignCenter
	view.clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.clock.TextSize = 56

	view.progress = widget.NewProgressBar()
	view.progress.TextFormatter = func() string { return "" }

	view.task = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	view.task.Truncation = fyne.TextTruncateEllipsis

	modes := make([]fyne.CanvasObject, 0, len(session.Modes))
	for _, mode := range session.Modes {
		button := widget.NewButton(mode.Label(), func() {
			view.host.SwitchMode(mode)
		})
		view.modeButtons[mode] = button
		modes = append(modes, button)
	}

	view.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), view.host.Toggle)
	view.startButton.Importance = widget.HighImportance
	view.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), view.host.Reset)
	view.ackButton = widget.NewButtonWithIcon("Dismiss alarm", theme.VolumeMuteIcon(), view.host.AcknowledgeAlarm)
	view.ackButton.Importance = widget.DangerImportance
	view.ackButton.Hide()

	view.muteButton = widget.NewButtonWithIcon("Mute", theme.VolumeUpIcon(), func() {
		view.host.ToggleMute()
	})
	view.popOutButton = widget.NewButtonWithIcon("Pop out", theme.ViewRestoreIcon(), view.host.OpenMirror)

	view.custom = widget.NewEntry()
	view.custom.SetPlaceHolder("minutes")
	view.custom.OnSubmitted = func(string) { view.submitCustom() }
	view.customButton = widget.NewButton("Set", view.submitCustom)

	view.placeholder = canvas.NewRectangle(color.Transparent)
	view.placeholder.SetMinSize(fyne.NewSize(320, 150))

	return container.NewVBox(
		container.NewGridWithColumns(len(modes), modes...),
		view.modeLabel,
		view.clock,
		view.progress,
		view.task,
		container.NewHBox(layout.NewSpacer(), view.startButton, view.resetButton, view.ackButton, layout.NewSpacer()),
		container.NewHBox(layout.NewSpacer(), view.muteButton, view.newNoiseButton(), view.popOutButton, layout.NewSpacer()),
		container.NewBorder(nil, nil, widget.NewLabel("Custom"), view.customButton, view.custom),
		view.placeholder,
	)
}

func (view *View) buildAmbienceTab() fyne.CanvasObject {
	title := widget.NewLabelWithStyle(view.scene.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	about := widget.NewLabel("Warm brown noise, low-passed and faded in gently.")
	about.Wrapping = fyne.TextWrapWord
	return container.NewVBox(title, about, view.newNoiseButton())
}

func (view *View) newNoiseButton() *widget.Button {
	button := widget.NewButtonWithIcon("Play noise", theme.MediaMusicIcon(), func() {
		view.host.ToggleNoise()
	})
	view.noiseButtons = append(view.noiseButtons, button)
	return button
}

func (view *View) submitCustom() {
	minutes, err := strconv.Atoi(strings.TrimSpace(view.custom.Text))
	if err != nil {
		return
	}
	view.host.SetCustomDuration(minutes)
}

func (view *View) handleTab(tab *container.TabItem) {
	if tab == view.timerTab {
		view.registry.Mount(SceneAnchor, view.placeholder)
		return
	}
	view.registry.Unmount(SceneAnchor)
}

func (view *View) renderUnsafe(state session.State) {
	view.modeLabel.SetText(state.Mode.Label())

	view.clock.Text = state.Clock()
	if state.Phase == session.PhaseExpired {
		view.clock.Color = alertColor
	} else {
		view.clock.Color = clockColor
	}
	view.clock.Refresh()
	view.progress.SetValue(state.Progress())

	if state.Task != "" {
		view.task.SetText(fmt.Sprintf("Working on: %s", state.Task))
	} else {
		view.task.SetText("No task selected")
	}

	for mode, button := range view.modeButtons {
		importance := widget.MediumImportance
		if mode == state.Mode {
			importance = widget.HighImportance
		}
		if button.Importance != importance {
			button.Importance = importance
			button.Refresh()
		}
	}

	switch {
	case state.Active:
		view.startButton.SetText("Pause")
		view.startButton.SetIcon(theme.MediaPauseIcon())
	case state.Remaining < state.Duration && state.Phase == session.PhaseIdle:
		view.startButton.SetText("Resume")
		view.startButton.SetIcon(theme.MediaPlayIcon())
	default:
		view.startButton.SetText("Start")
		view.startButton.SetIcon(theme.MediaPlayIcon())
	}
	if state.Phase == session.PhaseExpired {
		view.startButton.Disable()
	} else {
		view.startButton.Enable()
	}

	if state.Alerting {
		view.ackButton.Show()
	} else {
		view.ackButton.Hide()
	}

	if state.Muted {
		view.muteButton.SetText("Unmute")
		view.muteButton.SetIcon(theme.VolumeMuteIcon())
	} else {
		view.muteButton.SetText("Mute")
		view.muteButton.SetIcon(theme.VolumeUpIcon())
	}
	for _, button := range view.noiseButtons {
		if state.Ambient {
			button.SetText("Stop noise")
		} else {
			button.SetText("Play noise")
		}
	}

	view.mu.Lock()
	customChanged := view.lastCustom != state.CustomMinutes
	view.lastCustom = state.CustomMinutes
	view.mu.Unlock()
	if customChanged {
		view.custom.SetText(strconv.Itoa(state.CustomMinutes))
	}

	view.updatePulse(state.Alerting)
}

func (view *View) updatePulse(alerting bool) {
	view.mu.Lock()
	view.alerting = alerting
	animate := alerting && !view.reducedMotion
	view.mu.Unlock()

	if !animate {
		view.pulseEngine.Stop()
		return
	}
	if view.pulseEngine.Running() {
		return
	}
	view.pulseEngine.StartPulse(context.Background(), func(on bool) {
		fyne.Do(func() {
			view.mu.Lock()
			alerting := view.alerting
			view.mu.Unlock()
			if !alerting {
				return
			}
			if on {
				view.clock.Color = alertColor
			} else {
				view.clock.Color = dimColor
			}
			view.clock.Refresh()
		})
	})
}

func (view *View) startMotion() {
	view.mu.Lock()
	if view.cancel != nil {
		view.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	view.cancel = cancel
	alerting := view.alerting
	view.mu.Unlock()

	view.loop.Start(ctx)
	view.startScene()
	view.updatePulse(alerting)
}

func (view *View) stopMotion() {
	view.mu.Lock()
	cancel := view.cancel
	view.cancel = nil
	view.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	view.loop.Stop()
	view.sceneEngine.Stop()
	view.pulseEngine.Stop()
}

func (view *View) startScene() {
	view.mu.Lock()
	scene := view.scene
	if view.reducedMotion {
		scene = scene.Still()
	}
	view.mu.Unlock()

	view.sceneEngine.StartScene(context.Background(), scene, func(palette animation.Palette) {
		fyne.Do(func() {
			view.backdrop.StartColor = palette.Top
			view.backdrop.EndColor = palette.Bottom
			view.backdrop.Refresh()
		})
	})
}
