package audio

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"
)

// NoiseConfig contains ambient texture settings.
type NoiseConfig struct {
	BufferLength time.Duration
	Cutoff       float64
	Q            float64
	Level        float64
	Fade         time.Duration
}

// DefaultNoiseConfig returns a warm brown noise at a low background level.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		BufferLength: 2 * time.Second,
		Cutoff:       400,
		Q:            1,
		Level:        0.12,
		Fade:         2 * time.Second,
	}
}

// Noise is the continuous ambient voice. At most one voice exists.
type Noise struct {
	mu       sync.Mutex
	graph    *Graph
	config   NoiseConfig
	rng      *rand.Rand
	running  bool
	voice    *voice
	player   Player
	gain     *Gain
	nodes    []Node
	teardown *time.Timer
}

// NewNoise creates a noise generator routed through graph.
func NewNoise(graph *Graph, config NoiseConfig) *Noise {
	if config.BufferLength <= 0 {
		config.BufferLength = 2 * time.Second
	}
	if config.Q <= 0 {
		config.Q = 1
	}
	return &Noise{
		graph:  graph,
		config: config,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start fades the ambient texture in. Calling it while running is a no-op.
func (noise *Noise) Start(ctx context.Context) {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	if noise.running {
		return
	}

	fadeSamples := samplesFor(noise.config.Fade)
	if noise.voice != nil {
		// Still fading out: bring the same voice back up.
		if noise.teardown != nil {
			noise.teardown.Stop()
			noise.teardown = nil
		}
		noise.voice.do(func() {
			noise.gain.Level().RampTo(noise.config.Level, fadeSamples)
		})
		noise.running = true
		return
	}

	output, err := noise.graph.Acquire(ctx)
	if err != nil {
		log.Printf("audio: ambient noise disabled: %v", err)
		return
	}

	source := NewLoopBuffer("source", BrownNoise(samplesFor(noise.config.BufferLength), noise.rng))
	lowpass := NewLowPass("lowpass", source, noise.config.Cutoff, noise.config.Q)
	gain := NewGain("gain", lowpass, silentLevel)
	gain.Level().RampTo(noise.config.Level, fadeSamples)

	noise.voice = newVoice(gain)
	noise.gain = gain
	noise.nodes = []Node{source, lowpass, gain}
	noise.player = output.NewPlayer(noise.voice)
	noise.player.Play()
	noise.running = true
}

// Stop fades the texture out and releases it afterwards. Calling it while
// stopped is a no-op.
func (noise *Noise) Stop() {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	if !noise.running {
		return
	}
	noise.running = false

	current := noise.voice
	current.do(func() {
		noise.gain.Level().RampTo(silentLevel, samplesFor(noise.config.Fade))
	})
	noise.teardown = time.AfterFunc(noise.config.Fade, func() {
		noise.release(current)
	})
}

// Toggle starts or stops the texture and reports whether it is now running.
func (noise *Noise) Toggle(ctx context.Context) bool {
	if noise.Running() {
		noise.Stop()
		return false
	}
	noise.Start(ctx)
	return noise.Running()
}

// SetLevel changes the target level, gliding a running texture to it.
func (noise *Noise) SetLevel(level float64) {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	noise.config.Level = level
	if !noise.running || noise.voice == nil {
		return
	}
	noise.voice.do(func() {
		noise.gain.Level().RampTo(level, samplesFor(noise.config.Fade)/4)
	})
}

// Running reports whether the texture is playing or fading in.
func (noise *Noise) Running() bool {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	return noise.running
}

// Nodes returns the names of the live graph nodes.
func (noise *Noise) Nodes() []string {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	return nodeNames(noise.nodes)
}

func (noise *Noise) release(target *voice) {
	noise.mu.Lock()
	defer noise.mu.Unlock()
	if noise.running || noise.voice != target {
		return
	}
	if err := noise.player.Close(); err != nil {
		log.Printf("audio: close ambient player: %v", err)
	}
	noise.player = nil
	noise.voice = nil
	noise.gain = nil
	noise.nodes = nil
	noise.teardown = nil
}

// BrownNoise fills a buffer with a leaky integration of white noise, which
// weights the spectrum toward low frequencies.
func BrownNoise(samples int, rng *rand.Rand) []float64 {
	data := make([]float64, samples)
	last := 0.0
	for i := range data {
		white := rng.Float64()*2 - 1
		last = (last + 0.02*white) / 1.02
		data[i] = last * 3.5
	}
	return data
}

func samplesFor(duration time.Duration) int {
	return int(duration.Seconds() * SampleRate)
}

func nodeNames(nodes []Node) []string {
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name())
	}
	return names
}
