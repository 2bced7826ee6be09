package tray

import (
	"testing"
	"time"

	"focusdeck/internal/core/session"

	"fyne.io/fyne/v2/test"
)

func TestRenderUpdatesMenu(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	manager := New(nil, Callbacks{})
	manager.Render(session.State{
		Mode:      session.ModeShortBreak,
		Phase:     session.PhaseRunning,
		Active:    true,
		Duration:  5 * time.Minute,
		Remaining: 4*time.Minute + 30*time.Second,
		Muted:     true,
	})

	if manager.StatusLabel() != "Status: Short Break 04:30" {
		t.Errorf("Unexpected status %q", manager.StatusLabel())
	}
	if manager.toggleItem.Label != "Pause" {
		t.Errorf("Expected Pause label, got %s", manager.toggleItem.Label)
	}
	if !manager.modeItems[session.ModeShortBreak].Checked || manager.modeItems[session.ModeFocus].Checked {
		t.Error("Expected only the short break mode checked")
	}
	if !manager.muteItem.Checked {
		t.Error("Expected mute checked")
	}
	if manager.noiseItem.Checked {
		t.Error("Expected noise unchecked")
	}
}

func TestRenderReportsChangesOnly(t *testing.T) {
	manager := New(nil, Callbacks{})
	state := session.State{Mode: session.ModeFocus, Phase: session.PhaseIdle, Duration: time.Minute, Remaining: time.Minute}

	if !manager.apply(state) {
		t.Error("Expected first apply to change the menu")
	}
	if manager.apply(state) {
		t.Error("Expected identical snapshot to leave the menu alone")
	}
	if manager.StatusLabel() != "Status: Focus ready" {
		t.Errorf("Unexpected status %q", manager.StatusLabel())
	}

	state.Phase = session.PhaseExpired
	state.Remaining = 0
	manager.apply(state)
	if !manager.toggleItem.Disabled {
		t.Error("Expected start disabled once expired")
	}
}

func TestMenuActionsInvokeCallbacks(t *testing.T) {
	var toggled, quit int
	var mode session.Mode
	manager := New(nil, Callbacks{
		OnToggle: func() { toggled++ },
		OnQuit:   func() { quit++ },
		OnMode:   func(selected session.Mode) { mode = selected },
	})

	manager.toggleItem.Action()
	manager.modeItems[session.ModeLongBreak].Action()
	for _, item := range manager.menu.Items {
		if item.IsQuit {
			item.Action()
		}
	}

	if toggled != 1 {
		t.Errorf("Expected one toggle, got %d", toggled)
	}
	if mode != session.ModeLongBreak {
		t.Errorf("Expected long break selected, got %s", mode)
	}
	if quit != 1 {
		t.Errorf("Expected one quit, got %d", quit)
	}

	empty := New(nil, Callbacks{})
	empty.toggleItem.Action()
}
