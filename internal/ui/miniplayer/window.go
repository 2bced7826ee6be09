// Package miniplayer renders the detached always-on-top mirror of the
// running session.
package miniplayer

import (
	"image/color"
	"sync"

	"focusdeck/internal/core/session"
	"focusdeck/internal/mirror"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"
)

// Controls is the subset of the session API the mini-player drives.
type Controls interface {
	Toggle()
	AcknowledgeAlarm()
}

// Config defines mini-player visuals.
type Config struct {
	Opacity float64
	Size    fyne.Size
}

// DefaultConfig returns a compact, slightly translucent window.
func DefaultConfig() Config {
	return Config{Opacity: 0.92, Size: fyne.NewSize(240, 132)}
}

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Factory opens mini-player windows for the mirror channel.
type Factory struct {
	mu       sync.Mutex
	app      fyne.App
	controls Controls
	config   Config
}

// NewFactory creates a Factory bound to app.
func NewFactory(app fyne.App, controls Controls, config Config) *Factory {
	if config.Size.Width <= 0 || config.Size.Height <= 0 {
		config.Size = DefaultConfig().Size
	}
	return &Factory{app: app, controls: controls, config: config}
}

// SetOpacity changes the opacity used by windows opened afterwards.
func (factory *Factory) SetOpacity(opacity float64) {
	factory.mu.Lock()
	defer factory.mu.Unlock()
	factory.config.Opacity = opacity
}

// OpenWindow creates and shows a mini-player. It must run on the UI goroutine.
func (factory *Factory) OpenWindow(onClosed func()) (mirror.Window, error) {
	if factory.app == nil {
		return nil, mirror.ErrWindowBlocked
	}
	factory.mu.Lock()
	config := factory.config
	factory.mu.Unlock()

	window := factory.app.NewWindow("FocusDeck")
	if driver, ok := factory.app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if factory.app.Icon() != nil {
		window.SetIcon(factory.app.Icon())
	}
	window.SetPadded(false)

	mini := newWindow(window, factory.controls, config)
	window.SetOnClosed(func() {
		mini.markClosed()
		if onClosed != nil {
			onClosed()
		}
	})
	window.Show()
	applyNativeTopmost(window, config.Opacity)
	return mini, nil
}

// Window is one mini-player instance.
type Window struct {
	id       string
	window   fyne.Window
	controls Controls

	mu     sync.Mutex
	closed bool

	mode        *canvas.Text
	clock       *canvas.Text
	task        *canvas.Text
	progress    *widget.ProgressBar
	startButton *widget.Button
	ackButton   *widget.Button
}

var (
	textColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	clockColor   = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	expiredColor = color.NRGBA{R: 240, G: 98, B: 86, A: 255}
)

func newWindow(window fyne.Window, controls Controls, config Config) *Window {
	mode := canvas.NewText(session.ModeFocus.Label(), textColor)
	mode.TextStyle = fyne.TextStyle{Bold: true}
	mode.TextSize = 13

	clock := canvas.NewText("--:--", clockColor)
	clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clock.TextSize = 30

	task := canvas.NewText("", textColor)
	task.TextSize = 11

	mini := &Window{
		id:       "mini-" + uuid.NewString(),
		window:   window,
		controls: controls,
		mode:     mode,
		clock:    clock,
		task:     task,
		progress: widget.NewProgressBar(),
	}
	mini.progress.TextFormatter = func() string { return "" }

	mini.startButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if mini.controls != nil {
			mini.controls.Toggle()
		}
	})
	mini.ackButton = widget.NewButtonWithIcon("", theme.VolumeMuteIcon(), func() {
		if mini.controls != nil {
			mini.controls.AcknowledgeAlarm()
		}
	})
	closeButton := widget.NewButtonWithIcon("", theme.CancelIcon(), window.Close)
	mini.ackButton.Hide()

	background := canvas.NewRectangle(color.NRGBA{R: 18, G: 20, B: 28, A: 255})
	buttons := container.NewHBox(mini.startButton, mini.ackButton, closeButton)
	content := container.New(&panelLayout{}, mode, clock, task, mini.progress, buttons)
	window.SetContent(container.NewStack(background, content))
	window.Resize(config.Size)
	return mini
}

// ID identifies the window on the mirror channel.
func (mini *Window) ID() string {
	return mini.id
}

// Render shows state. Safe to call from any goroutine.
func (mini *Window) Render(state session.State) {
	fyne.Do(func() {
		mini.renderUnsafe(state)
	})
}

// Focus raises the window.
func (mini *Window) Focus() {
	fyne.Do(func() {
		mini.window.Show()
		mini.window.RequestFocus()
	})
}

// Close closes the window. Closing twice is a no-op.
func (mini *Window) Close() {
	if !mini.markClosed() {
		return
	}
	fyne.Do(mini.window.Close)
}

func (mini *Window) markClosed() bool {
	mini.mu.Lock()
	defer mini.mu.Unlock()
	if mini.closed {
		return false
	}
	mini.closed = true
	return true
}

func (mini *Window) renderUnsafe(state session.State) {
	mini.mode.Text = state.Mode.Label()
	mini.mode.Refresh()

	mini.clock.Text = state.Clock()
	mini.clock.Color = clockColor
	if state.Phase == session.PhaseExpired {
		mini.clock.Color = expiredColor
	}
	mini.clock.Refresh()

	mini.task.Text = state.Task
	mini.task.Refresh()

	mini.progress.SetValue(state.Progress())

	if state.Active {
		mini.startButton.SetIcon(theme.MediaPauseIcon())
	} else {
		mini.startButton.SetIcon(theme.MediaPlayIcon())
	}
	if state.Phase == session.PhaseExpired {
		mini.startButton.Disable()
	} else {
		mini.startButton.Enable()
	}
	if state.Alerting {
		mini.ackButton.Show()
	} else {
		mini.ackButton.Hide()
	}
}

type panelLayout struct{}

func (layout *panelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 5 {
		return
	}
	mode, clock, task, progress, buttons := objects[0], objects[1], objects[2], objects[3], objects[4]

	pad := float32(8)
	width := size.Width - pad*2
	if width < 0 {
		width = 0
	}

	modeSize := mode.MinSize()
	mode.Move(fyne.NewPos(pad, pad))
	mode.Resize(fyne.NewSize(width, modeSize.Height))

	clockSize := clock.MinSize()
	clockY := pad + modeSize.Height + 2
	clock.Move(fyne.NewPos(pad, clockY))
	clock.Resize(clockSize)

	buttonSize := buttons.MinSize()
	buttons.Move(fyne.NewPos(size.Width-pad-buttonSize.Width, clockY+(clockSize.Height-buttonSize.Height)/2))
	buttons.Resize(buttonSize)

	taskSize := task.MinSize()
	taskY := clockY + clockSize.Height + 2
	task.Move(fyne.NewPos(pad, taskY))
	task.Resize(fyne.NewSize(width, taskSize.Height))

	progressY := size.Height - pad - 6
	progress.Move(fyne.NewPos(pad, progressY))
	progress.Resize(fyne.NewSize(width, 6))
}

func (layout *panelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 5 {
		return fyne.NewSize(0, 0)
	}
	modeSize := objects[0].MinSize()
	clockSize := objects[1].MinSize()
	taskSize := objects[2].MinSize()
	buttonSize := objects[4].MinSize()

	width := clockSize.Width + buttonSize.Width + 24
	if modeSize.Width+16 > width {
		width = modeSize.Width + 16
	}
	height := modeSize.Height + clockSize.Height + taskSize.Height + 34
	return fyne.NewSize(width, height)
}
