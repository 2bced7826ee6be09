// Package anchor keeps a persistent surface pinned over a placeholder
// that only exists while a particular view is on screen.
package anchor

import (
	"context"
	"math"
	"sync"
	"time"
)

// Rect is an absolute rectangle in canvas coordinates.
type Rect struct {
	X, Y, Width, Height float32
}

// Empty reports whether the rectangle has no area.
func (rect Rect) Empty() bool {
	return rect.Width <= 0 || rect.Height <= 0
}

// Locator measures placeholders by id.
type Locator interface {
	Locate(id string) (Rect, bool)
}

// Surface is the persistent element being pinned. Collapse must keep the
// element alive: zero size, hidden, not interactive.
type Surface interface {
	Place(rect Rect)
	Collapse()
}

// Binding is the last measured state of an anchor.
type Binding struct {
	ID      string
	Rect    Rect
	Visible bool
}

// Config contains loop timing and easing values.
type Config struct {
	FrameInterval time.Duration
	Easing        float32
	SnapDistance  float32
	// Dispatch runs each frame, e.g. on the UI thread. Nil runs inline.
	Dispatch func(func())
}

// DefaultConfig returns a 60 fps loop with gentle easing.
func DefaultConfig() Config {
	return Config{
		FrameInterval: time.Second / 60,
		Easing:        0.35,
		SnapDistance:  0.5,
	}
}

// Loop re-measures the anchor every frame and moves the surface onto it.
type Loop struct {
	mu            sync.Mutex
	config        Config
	id            string
	locator       Locator
	surface       Surface
	binding       Binding
	placed        Rect
	collapsed     bool
	reducedMotion bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// New creates a loop pinning surface to the placeholder named id.
func New(config Config, id string, locator Locator, surface Surface) *Loop {
	if config.FrameInterval <= 0 {
		config.FrameInterval = time.Second / 60
	}
	if config.Easing <= 0 || config.Easing > 1 {
		config.Easing = 1
	}
	return &Loop{
		config:  config,
		id:      id,
		locator: locator,
		surface: surface,
		binding: Binding{ID: id},
	}
}

// SetReducedMotion disables easing; placement stays exact.
func (loop *Loop) SetReducedMotion(enabled bool) {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	loop.reducedMotion = enabled
}

// Start launches the per-frame task. It stops when ctx ends or Stop is called.
func (loop *Loop) Start(ctx context.Context) {
	loop.mu.Lock()
	if loop.cancel != nil {
		loop.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	loop.cancel = cancel
	loop.done = done
	loop.mu.Unlock()

	go loop.run(runCtx, done)
}

// Stop tears the per-frame task down and waits for it to exit.
func (loop *Loop) Stop() {
	loop.mu.Lock()
	cancel := loop.cancel
	done := loop.done
	loop.cancel = nil
	loop.done = nil
	loop.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the per-frame task is active.
func (loop *Loop) Running() bool {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return loop.cancel != nil
}

// Binding returns the last measurement.
func (loop *Loop) Binding() Binding {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return loop.binding
}

// Frame runs a single measure-and-place step.
func (loop *Loop) Frame() {
	rect, found := loop.locator.Locate(loop.id)

	loop.mu.Lock()
	if !found || rect.Empty() {
		needsCollapse := !loop.collapsed
		loop.binding.Visible = false
		loop.placed = Rect{}
		loop.collapsed = true
		loop.mu.Unlock()
		if needsCollapse {
			loop.surface.Collapse()
		}
		return
	}

	target := rect
	if loop.binding.Visible && !loop.reducedMotion {
		target = ease(loop.placed, rect, loop.config.Easing, loop.config.SnapDistance)
	}
	unchanged := loop.binding.Visible && target == loop.placed
	loop.binding.Rect = rect
	loop.binding.Visible = true
	loop.placed = target
	loop.collapsed = false
	loop.mu.Unlock()

	if !unchanged {
		loop.surface.Place(target)
	}
}

func (loop *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(loop.config.FrameInterval)
	defer ticker.Stop()

	loop.dispatchFrame()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loop.dispatchFrame()
		}
	}
}

func (loop *Loop) dispatchFrame() {
	if loop.config.Dispatch == nil {
		loop.Frame()
		return
	}
	loop.config.Dispatch(loop.Frame)
}

func ease(from, to Rect, factor, snap float32) Rect {
	return Rect{
		X:      approach(from.X, to.X, factor, snap),
		Y:      approach(from.Y, to.Y, factor, snap),
		Width:  approach(from.Width, to.Width, factor, snap),
		Height: approach(from.Height, to.Height, factor, snap),
	}
}

func approach(from, to, factor, snap float32) float32 {
	delta := to - from
	if float32(math.Abs(float64(delta))) <= snap {
		return to
	}
	return from + delta*factor
}
