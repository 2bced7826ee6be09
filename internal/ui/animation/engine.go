package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains animation timing values.
type Config struct {
	SceneHold Range
	PulseOn   Range
	PulseOff  Range
}

// Engine runs one cancellable animation sequence at a time.
type Engine struct {
	mu     sync.Mutex
	config Config
	cancel context.CancelFunc
	rng    *rand.Rand
}

// New creates a new animation engine.
func New(config Config) *Engine {
	return &Engine{
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartScene cycles through palettes, holding each for a random
// SceneHold duration. A single palette is shown once.
func (engine *Engine) StartScene(ctx context.Context, scene Scene, show func(Palette)) {
	if len(scene.Palettes) == 0 {
		return
	}
	engine.start(ctx, func(runCtx context.Context) {
		index := 0
		for {
			show(scene.Palettes[index])
			if len(scene.Palettes) == 1 {
				return
			}
			if !sleepWithContext(runCtx, engine.random(engine.config.SceneHold)) {
				return
			}
			index = (index + 1) % len(scene.Palettes)
		}
	})
}

// StartPulse alternates highlighted and dimmed until stopped. The final
// call always restores the highlighted state.
func (engine *Engine) StartPulse(ctx context.Context, highlight func(bool)) {
	engine.start(ctx, func(runCtx context.Context) {
		defer highlight(true)
		for {
			highlight(false)
			if !sleepWithContext(runCtx, engine.random(engine.config.PulseOff)) {
				return
			}
			highlight(true)
			if !sleepWithContext(runCtx, engine.random(engine.config.PulseOn)) {
				return
			}
		}
	})
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

// Running reports whether a sequence has been started and not stopped.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) random(value Range) time.Duration {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return value.Random(engine.rng)
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
