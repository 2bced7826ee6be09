package preferences

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()

	focus   *widget.Entry
	short   *widget.Entry
	long    *widget.Entry
	custom  *widget.Entry
	muted   *widget.Check
	motion  *widget.Check
	ambient *widget.Slider
	opacity *widget.Slider
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("FocusDeck Settings")

	prefs := &Window{
		window:  window,
		onSave:  onSave,
		focus:   widget.NewEntry(),
		short:   widget.NewEntry(),
		long:    widget.NewEntry(),
		custom:  widget.NewEntry(),
		muted:   widget.NewCheck("Mute completion alarm", nil),
		motion:  widget.NewCheck("Reduce motion", nil),
		ambient: widget.NewSlider(MinAmbientLevel, MaxAmbientLevel),
		opacity: widget.NewSlider(MinMiniOpacity, MaxMiniOpacity),
	}
	prefs.ambient.Step = 0.01
	prefs.opacity.Step = 0.01
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Sessions", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		minutesRow("Focus", prefs.focus),
		minutesRow("Short break", prefs.short),
		minutesRow("Long break", prefs.long),
		minutesRow("Custom", prefs.custom),
		prefs.muted,
		widget.NewLabelWithStyle("Ambience", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Noise level"),
		prefs.ambient,
		prefs.motion,
		widget.NewLabel("Mini-player opacity"),
		prefs.opacity,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 480))
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetOnCancel registers a callback for the cancel button.
func (prefs *Window) SetOnCancel(callback func()) {
	prefs.onCancel = callback
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	settings = settings.Normalized()
	prefs.settings = settings
	prefs.focus.SetText(strconv.Itoa(settings.FocusMinutes))
	prefs.short.SetText(strconv.Itoa(settings.ShortBreakMinutes))
	prefs.long.SetText(strconv.Itoa(settings.LongBreakMinutes))
	prefs.custom.SetText(strconv.Itoa(settings.CustomMinutes))
	prefs.muted.SetChecked(settings.Muted)
	prefs.motion.SetChecked(settings.ReducedMotion)
	prefs.ambient.SetValue(settings.AmbientLevel)
	prefs.opacity.SetValue(settings.MiniPlayerOpacity)
}

// Settings returns the last saved values.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if minutes, ok := parsePositiveInt(prefs.focus.Text); ok {
		settings.FocusMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.short.Text); ok {
		settings.ShortBreakMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.long.Text); ok {
		settings.LongBreakMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(prefs.custom.Text); ok {
		settings.CustomMinutes = minutes
	}

	settings.Muted = prefs.muted.Checked
	settings.ReducedMotion = prefs.motion.Checked
	settings.AmbientLevel = prefs.ambient.Value
	settings.MiniPlayerOpacity = prefs.opacity.Value

	prefs.settings = settings.Normalized()
	if prefs.onSave != nil {
		prefs.onSave(prefs.settings)
	}
	prefs.window.Hide()
}

func minutesRow(label string, entry *widget.Entry) fyne.CanvasObject {
	entry.Validator = func(text string) error {
		if _, ok := parsePositiveInt(text); !ok {
			return fmt.Errorf("%s must be a positive number of minutes", label)
		}
		return nil
	}
	return container.NewBorder(nil, nil, widget.NewLabel(label), widget.NewLabel("min"), entry)
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
