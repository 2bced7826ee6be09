package miniplayer

import (
	"strings"
	"testing"
	"time"

	"focusdeck/internal/core/session"
	"focusdeck/internal/mirror"

	"fyne.io/fyne/v2/test"
)

type fakeControls struct {
	toggles int
	acks    int
}

func (controls *fakeControls) Toggle()           { controls.toggles++ }
func (controls *fakeControls) AcknowledgeAlarm() { controls.acks++ }

type capturingFactory struct {
	*Factory
	last *Window
}

func (factory *capturingFactory) OpenWindow(onClosed func()) (mirror.Window, error) {
	window, err := factory.Factory.OpenWindow(onClosed)
	if window != nil {
		factory.last = window.(*Window)
	}
	return window, err
}

func TestRenderShowsSnapshot(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	controls := &fakeControls{}
	factory := NewFactory(app, controls, DefaultConfig())
	window, err := factory.OpenWindow(nil)
	if err != nil {
		t.Fatalf("OpenWindow failed: %v", err)
	}
	mini := window.(*Window)

	if !strings.HasPrefix(mini.ID(), "mini-") {
		t.Errorf("Unexpected id %s", mini.ID())
	}

	mini.Render(session.State{
		Mode:      session.ModeLongBreak,
		Phase:     session.PhaseRunning,
		Active:    true,
		Duration:  15 * time.Minute,
		Remaining: 14*time.Minute + 3*time.Second,
		Task:      "Essay outline",
	})

	if mini.clock.Text != "14:03" {
		t.Errorf("Expected clock 14:03, got %s", mini.clock.Text)
	}
	if mini.mode.Text != "Long Break" {
		t.Errorf("Expected mode label, got %s", mini.mode.Text)
	}
	if mini.task.Text != "Essay outline" {
		t.Errorf("Expected task label, got %s", mini.task.Text)
	}
	if mini.ackButton.Visible() {
		t.Error("Acknowledge should be hidden while running")
	}

	test.Tap(mini.startButton)
	if controls.toggles != 1 {
		t.Errorf("Expected one toggle, got %d", controls.toggles)
	}
}

func TestExpiredStateOffersAcknowledge(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	controls := &fakeControls{}
	window, _ := NewFactory(app, controls, DefaultConfig()).OpenWindow(nil)
	mini := window.(*Window)

	mini.Render(session.State{Mode: session.ModeFocus, Phase: session.PhaseExpired, Alerting: true, Duration: time.Minute})
	if !mini.ackButton.Visible() {
		t.Fatal("Expected acknowledge button when expired")
	}
	if !mini.startButton.Disabled() {
		t.Error("Expected start disabled when expired")
	}
	test.Tap(mini.ackButton)
	if controls.acks != 1 {
		t.Errorf("Expected one acknowledge, got %d", controls.acks)
	}
}

func TestUserCloseUnsubscribesFromChannel(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	factory := &capturingFactory{Factory: NewFactory(app, &fakeControls{}, DefaultConfig())}
	channel := mirror.New(factory)
	channel.Publish(session.State{Mode: session.ModeFocus, Remaining: 25 * time.Minute, Seq: 1})
	channel.OpenMirror()
	if !channel.MirrorOpen() {
		t.Fatal("Expected mirror window open")
	}

	if factory.last.clock.Text != "25:00" {
		t.Errorf("Expected the last snapshot rendered on open, got %s", factory.last.clock.Text)
	}
	factory.last.window.Close()

	if channel.MirrorOpen() {
		t.Error("Expected user close to release the mirror")
	}
	if len(channel.Surfaces()) != 0 {
		t.Errorf("Expected no surfaces, got %v", channel.Surfaces())
	}
}

func TestProgrammaticCloseIsIdempotent(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	closedCalls := 0
	window, _ := NewFactory(app, &fakeControls{}, DefaultConfig()).OpenWindow(func() {
		closedCalls++
	})
	window.Close()
	window.Close()
	if closedCalls != 1 {
		t.Errorf("Expected one close notification, got %d", closedCalls)
	}
}

func TestFactoryWithoutAppIsBlocked(t *testing.T) {
	if _, err := NewFactory(nil, nil, Config{}).OpenWindow(nil); err != mirror.ErrWindowBlocked {
		t.Errorf("Expected ErrWindowBlocked, got %v", err)
	}
}
