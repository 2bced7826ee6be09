package dashboard

import (
	"testing"
	"time"

	"focusdeck/internal/core/session"
	"focusdeck/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

type fakeHost struct {
	toggles int
	resets  int
	modes   []session.Mode
	custom  []int
	mutes   int
	noises  int
	acks    int
	mirrors int
}

func (host *fakeHost) Toggle()                       { host.toggles++ }
func (host *fakeHost) Reset()                        { host.resets++ }
func (host *fakeHost) SwitchMode(mode session.Mode)  { host.modes = append(host.modes, mode) }
func (host *fakeHost) SetCustomDuration(minutes int) { host.custom = append(host.custom, minutes) }

func (host *fakeHost) ToggleMute() bool {
	host.mutes++
	return true
}

func (host *fakeHost) ToggleNoise() bool {
	host.noises++
	return true
}

func (host *fakeHost) AcknowledgeAlarm() { host.acks++ }
func (host *fakeHost) OpenMirror()       { host.mirrors++ }

func testConfig(reducedMotion bool) Config {
	config := DefaultConfig()
	config.ReducedMotion = reducedMotion
	config.Anchor.Dispatch = nil
	config.Anchor.FrameInterval = time.Hour
	step := animation.Range{Min: time.Millisecond, Max: 2 * time.Millisecond}
	config.Animation = animation.Config{SceneHold: step, PulseOn: step, PulseOff: step}
	return config
}

func newTestView(t *testing.T, reducedMotion bool) (*View, *fakeHost) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	host := &fakeHost{}
	view := New(app, host, testConfig(reducedMotion))
	t.Cleanup(view.Close)
	return view, host
}

func TestRenderShowsSnapshot(t *testing.T) {
	view, _ := newTestView(t, true)

	view.Render(session.State{
		Mode:          session.ModeCustom,
		Phase:         session.PhaseIdle,
		Duration:      45 * time.Minute,
		Remaining:     30 * time.Minute,
		CustomMinutes: 45,
		Task:          "Lab report",
		Ambient:       true,
	})

	if view.clock.Text != "30:00" {
		t.Errorf("Expected 30:00, got %s", view.clock.Text)
	}
	if view.startButton.Text != "Resume" {
		t.Errorf("Expected Resume for a paused session, got %s", view.startButton.Text)
	}
	if view.task.Text != "Working on: Lab report" {
		t.Errorf("Unexpected task label %q", view.task.Text)
	}
	if view.custom.Text != "45" {
		t.Errorf("Expected custom entry 45, got %s", view.custom.Text)
	}
	for _, button := range view.noiseButtons {
		if button.Text != "Stop noise" {
			t.Errorf("Expected noise button to offer stop, got %s", button.Text)
		}
	}
	if view.ackButton.Visible() {
		t.Error("Acknowledge should be hidden without an alert")
	}
}

func TestControlsDriveHost(t *testing.T) {
	view, host := newTestView(t, true)

	test.Tap(view.startButton)
	test.Tap(view.resetButton)
	test.Tap(view.modeButtons[session.ModeLongBreak])
	test.Tap(view.muteButton)
	test.Tap(view.noiseButtons[0])
	test.Tap(view.popOutButton)

	view.custom.SetText("500")
	test.Tap(view.customButton)
	view.custom.SetText("soon")
	test.Tap(view.customButton)

	if host.toggles != 1 || host.resets != 1 || host.mutes != 1 || host.noises != 1 || host.mirrors != 1 {
		t.Errorf("Unexpected host calls %+v", host)
	}
	if len(host.modes) != 1 || host.modes[0] != session.ModeLongBreak {
		t.Errorf("Expected long break switch, got %v", host.modes)
	}
	if len(host.custom) != 1 || host.custom[0] != 500 {
		t.Errorf("Expected a single custom duration of 500, got %v", host.custom)
	}
}

func TestAlertPulseHonorsReducedMotion(t *testing.T) {
	view, host := newTestView(t, true)
	alert := session.State{Mode: session.ModeFocus, Phase: session.PhaseExpired, Alerting: true, Duration: time.Minute}

	view.Render(alert)
	if !view.ackButton.Visible() {
		t.Error("Expected acknowledge button while alerting")
	}
	if view.pulseEngine.Running() {
		t.Error("Reduced motion should not pulse")
	}
	test.Tap(view.ackButton)
	if host.acks != 1 {
		t.Errorf("Expected one acknowledge, got %d", host.acks)
	}

	view.SetReducedMotion(false)
	if !view.pulseEngine.Running() {
		t.Error("Expected pulse once motion is allowed")
	}

	alert.Alerting = false
	view.Render(alert)
	if view.pulseEngine.Running() {
		t.Error("Expected pulse stopped after the alert clears")
	}
}

func TestSceneFollowsPlaceholder(t *testing.T) {
	view, _ := newTestView(t, true)
	view.window.Resize(fyne.NewSize(440, 640))

	view.loop.Frame()
	if !view.backdrop.Visible() {
		t.Fatal("Expected scene shown over the timer tab placeholder")
	}
	if view.backdrop.Size() != view.placeholder.Size() {
		t.Errorf("Expected scene size %v, got %v", view.placeholder.Size(), view.backdrop.Size())
	}
	if !view.loop.Binding().Visible {
		t.Error("Expected visible binding")
	}

	view.tabs.Select(view.ambienceTab)
	view.loop.Frame()
	if view.backdrop.Visible() {
		t.Error("Expected scene collapsed on the ambience tab")
	}
	if view.backdrop.Size() != fyne.NewSize(0, 0) {
		t.Errorf("Expected zero size, got %v", view.backdrop.Size())
	}

	view.tabs.Select(view.timerTab)
	view.loop.Frame()
	if !view.backdrop.Visible() {
		t.Error("Expected scene restored on the timer tab")
	}
}

func TestShowHideControlsLoop(t *testing.T) {
	view, _ := newTestView(t, true)

	view.Show()
	if !view.loop.Running() {
		t.Error("Expected anchor loop running while shown")
	}
	view.Hide()
	if view.loop.Running() {
		t.Error("Expected anchor loop stopped while hidden")
	}
}
