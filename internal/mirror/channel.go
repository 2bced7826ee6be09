// Package mirror fans session snapshots out to every open rendering
// surface, including an optional detached mini-player window.
package mirror

import (
	"errors"
	"log"
	"sync"

	"focusdeck/internal/core/session"
)

// ErrWindowBlocked indicates the host refused to open a mirror window.
var ErrWindowBlocked = errors.New("mirror window blocked")

// Surface renders session snapshots. Render must not block and must not
// call back into the timer.
type Surface interface {
	ID() string
	Render(state session.State)
}

// Window is a detached surface that can be closed programmatically.
type Window interface {
	Surface
	Focus()
	Close()
}

// WindowFactory opens mirror windows. onClosed must be invoked when the
// user closes the window directly.
type WindowFactory interface {
	OpenWindow(onClosed func()) (Window, error)
}

// Channel is a synchronous, last-write-wins snapshot broadcaster.
type Channel struct {
	mu       sync.Mutex
	surfaces []Surface
	last     session.State
	hasLast  bool
	factory  WindowFactory
	window   Window
}

// New creates a Channel. factory may be nil when pop-out is unsupported.
func New(factory WindowFactory) *Channel {
	return &Channel{factory: factory}
}

// SetFactory replaces the window factory.
func (channel *Channel) SetFactory(factory WindowFactory) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	channel.factory = factory
}

// Subscribe registers surface and renders the latest snapshot into it.
func (channel *Channel) Subscribe(surface Surface) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	channel.subscribeLocked(surface)
}

// Unsubscribe removes surface. Unknown surfaces are ignored.
func (channel *Channel) Unsubscribe(surface Surface) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	channel.unsubscribeLocked(surface.ID())
}

// Publish delivers state to every surface in subscription order. Snapshots
// older than the last delivered one are dropped.
func (channel *Channel) Publish(state session.State) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	if channel.hasLast && state.Seq < channel.last.Seq {
		return
	}
	channel.last = state
	channel.hasLast = true
	for _, surface := range channel.surfaces {
		surface.Render(state)
	}
}

// Last returns the most recent snapshot.
func (channel *Channel) Last() (session.State, bool) {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	return channel.last, channel.hasLast
}

// Surfaces returns the IDs of the registered surfaces.
func (channel *Channel) Surfaces() []string {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	ids := make([]string, 0, len(channel.surfaces))
	for _, surface := range channel.surfaces {
		ids = append(ids, surface.ID())
	}
	return ids
}

// OpenMirror opens the detached window and subscribes it. A second call
// while open focuses the existing window. Blocked windows are absorbed.
func (channel *Channel) OpenMirror() {
	channel.mu.Lock()
	defer channel.mu.Unlock()

	if channel.window != nil {
		channel.window.Focus()
		return
	}
	if channel.factory == nil {
		log.Printf("mirror: pop-out unsupported")
		return
	}

	var opened Window
	window, err := channel.factory.OpenWindow(func() {
		channel.handleClosed(opened)
	})
	if err != nil {
		log.Printf("mirror: open window: %v", err)
		return
	}
	if window == nil {
		log.Printf("mirror: open window: %v", ErrWindowBlocked)
		return
	}
	opened = window
	channel.window = window
	channel.subscribeLocked(window)
}

// CloseMirror unsubscribes and closes the detached window if one is open.
func (channel *Channel) CloseMirror() {
	channel.mu.Lock()
	window := channel.window
	if window == nil {
		channel.mu.Unlock()
		return
	}
	channel.window = nil
	channel.unsubscribeLocked(window.ID())
	channel.mu.Unlock()

	window.Close()
}

// MirrorOpen reports whether a detached window is registered.
func (channel *Channel) MirrorOpen() bool {
	channel.mu.Lock()
	defer channel.mu.Unlock()
	return channel.window != nil
}

func (channel *Channel) handleClosed(window Window) {
	if window == nil {
		return
	}
	channel.mu.Lock()
	defer channel.mu.Unlock()
	if channel.window != nil && channel.window.ID() == window.ID() {
		channel.window = nil
	}
	channel.unsubscribeLocked(window.ID())
}

func (channel *Channel) subscribeLocked(surface Surface) {
	channel.unsubscribeLocked(surface.ID())
	channel.surfaces = append(channel.surfaces, surface)
	if channel.hasLast {
		surface.Render(channel.last)
	}
}

func (channel *Channel) unsubscribeLocked(id string) {
	kept := channel.surfaces[:0]
	for _, surface := range channel.surfaces {
		if surface.ID() != id {
			kept = append(kept, surface)
		}
	}
	for i := len(kept); i < len(channel.surfaces); i++ {
		channel.surfaces[i] = nil
	}
	channel.surfaces = kept
}
