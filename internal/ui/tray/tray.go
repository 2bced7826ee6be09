package tray

import (
	"fmt"
	"sync"

	"focusdeck/internal/core/session"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const surfaceID = "tray"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnToggle      func()
	OnReset       func()
	OnMode        func(session.Mode)
	OnMute        func()
	OnNoise       func()
	OnPopOut      func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state. It renders session snapshots as a
// mirror surface.
type Manager struct {
	mu  sync.Mutex
	app desktop.App

	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	modeItems  map[session.Mode]*fyne.MenuItem
	muteItem   *fyne.MenuItem
	noiseItem  *fyne.MenuItem
	menu       *fyne.Menu
}

// New creates a tray manager with the provided callbacks. app may be nil
// when the driver has no tray.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		modeItems: make(map[session.Mode]*fyne.MenuItem, len(session.Modes)),
	}

	manager.statusItem = fyne.NewMenuItem("Status: starting...", nil)
	manager.statusItem.Disabled = true

	show := fyne.NewMenuItem("Show FocusDeck", action(callbacks.OnShow))
	manager.toggleItem = fyne.NewMenuItem("Start", action(callbacks.OnToggle))
	reset := fyne.NewMenuItem("Reset", action(callbacks.OnReset))

	modes := make([]*fyne.MenuItem, 0, len(session.Modes))
	for _, mode := range session.Modes {
		item := fyne.NewMenuItem(mode.Label(), func() {
			if callbacks.OnMode != nil {
				callbacks.OnMode(mode)
			}
		})
		manager.modeItems[mode] = item
		modes = append(modes, item)
	}
	modeMenu := fyne.NewMenuItem("Mode", nil)
	modeMenu.ChildMenu = fyne.NewMenu("", modes...)

	manager.muteItem = fyne.NewMenuItem("Mute alarm", action(callbacks.OnMute))
	manager.noiseItem = fyne.NewMenuItem("Ambient noise", action(callbacks.OnNoise))
	popOut := fyne.NewMenuItem("Pop out mini-player", action(callbacks.OnPopOut))
	preferences := fyne.NewMenuItem("Preferences", action(callbacks.OnPreferences))
	quit := fyne.NewMenuItem("Quit", action(callbacks.OnQuit))
	quit.IsQuit = true

	manager.menu = fyne.NewMenu("FocusDeck",
		manager.statusItem,
		show,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		reset,
		modeMenu,
		fyne.NewMenuItemSeparator(),
		manager.muteItem,
		manager.noiseItem,
		popOut,
		fyne.NewMenuItemSeparator(),
		preferences,
		quit,
	)
	if app != nil {
		app.SetSystemTrayMenu(manager.menu)
	}

	return manager
}

// ID identifies the tray on the mirror channel.
func (manager *Manager) ID() string {
	return surfaceID
}

// Render updates menu labels from state. Safe to call from any goroutine.
func (manager *Manager) Render(state session.State) {
	fyne.Do(func() {
		if manager.apply(state) {
			manager.refreshMenu()
		}
	})
}

// StatusLabel returns the current status line.
func (manager *Manager) StatusLabel() string {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.statusItem.Label
}

func (manager *Manager) apply(state session.State) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	changed := false
	set := func(target *string, value string) {
		if *target != value {
			*target = value
			changed = true
		}
	}
	check := func(item *fyne.MenuItem, value bool) {
		if item.Checked != value {
			item.Checked = value
			changed = true
		}
	}

	set(&manager.statusItem.Label, statusText(state))
	if state.Active {
		set(&manager.toggleItem.Label, "Pause")
	} else {
		set(&manager.toggleItem.Label, "Start")
	}
	expired := state.Phase == session.PhaseExpired
	if manager.toggleItem.Disabled != expired {
		manager.toggleItem.Disabled = expired
		changed = true
	}
	for mode, item := range manager.modeItems {
		check(item, mode == state.Mode)
	}
	check(manager.muteItem, state.Muted)
	check(manager.noiseItem, state.Ambient)
	return changed
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(manager.menu)
}

func statusText(state session.State) string {
	switch state.Phase {
	case session.PhaseExpired:
		return fmt.Sprintf("Status: %s finished", state.Mode.Label())
	case session.PhaseRunning:
		return fmt.Sprintf("Status: %s %s", state.Mode.Label(), state.Clock())
	default:
		if state.Remaining == state.Duration {
			return fmt.Sprintf("Status: %s ready", state.Mode.Label())
		}
		return fmt.Sprintf("Status: %s %s (paused)", state.Mode.Label(), state.Clock())
	}
}

func action(callback func()) func() {
	return func() {
		if callback != nil {
			callback()
		}
	}
}
