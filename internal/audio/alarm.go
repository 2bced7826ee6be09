package audio

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// AlarmConfig contains alert tone settings.
type AlarmConfig struct {
	Frequencies  []float64
	TremoloRate  float64
	TremoloDepth float64
	Level        float64
	AcquireLimit time.Duration
}

// DefaultAlarmConfig returns a C major seventh chord with a 3 Hz pulse.
func DefaultAlarmConfig() AlarmConfig {
	return AlarmConfig{
		Frequencies:  []float64{523.25, 659.25, 783.99, 987.77},
		TremoloRate:  3,
		TremoloDepth: 0.4,
		Level:        0.2,
		AcquireLimit: 2 * time.Second,
	}
}

// Alarm is the session-complete alert. It rings until Stop is called.
type Alarm struct {
	mu         sync.Mutex
	graph      *Graph
	config     AlarmConfig
	muted      bool
	running    bool
	generation uint64
	cancel     context.CancelFunc
	player     Player
	nodes      []Node
}

// NewAlarm creates an alarm routed through graph.
func NewAlarm(graph *Graph, config AlarmConfig) *Alarm {
	if config.AcquireLimit <= 0 {
		config.AcquireLimit = 2 * time.Second
	}
	return &Alarm{graph: graph, config: config}
}

// Play starts the chord. It is a no-op while muted or already ringing.
// It never waits for the audio device: the player is attached once the
// device is ready, unless Stop ran first.
func (alarm *Alarm) Play() {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	if alarm.muted || alarm.running {
		return
	}

	master, nodes := alarm.buildChord()
	ctx, cancel := context.WithTimeout(context.Background(), alarm.config.AcquireLimit)
	alarm.generation++
	alarm.cancel = cancel
	alarm.nodes = nodes
	alarm.running = true
	go alarm.attach(ctx, alarm.generation, master)
}

// Stop halts and releases every node. Calling it while silent is a no-op.
func (alarm *Alarm) Stop() {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	if !alarm.running {
		return
	}
	alarm.releaseLocked()
}

func (alarm *Alarm) attach(ctx context.Context, generation uint64, master Node) {
	output, err := alarm.graph.Acquire(ctx)

	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	if !alarm.running || alarm.generation != generation {
		return
	}
	if err != nil {
		log.Printf("audio: alarm disabled: %v", err)
		alarm.releaseLocked()
		return
	}
	alarm.player = output.NewPlayer(newVoice(master))
	alarm.player.Play()
}

func (alarm *Alarm) buildChord() (Node, []Node) {
	nodes := make([]Node, 0, len(alarm.config.Frequencies)+3)
	voices := make([]Node, 0, len(alarm.config.Frequencies))
	for index, frequency := range alarm.config.Frequencies {
		oscillator := NewOscillator(fmt.Sprintf("osc-%d", index), frequency, 1)
		voices = append(voices, oscillator)
		nodes = append(nodes, oscillator)
	}
	scale := 1.0
	if len(voices) > 0 {
		scale = 1 / float64(len(voices))
	}
	chord := NewMixer("chord", scale, voices...)
	lfo := NewOscillator("lfo", alarm.config.TremoloRate, alarm.config.TremoloDepth)
	tremolo := NewGain("tremolo", chord, 1-alarm.config.TremoloDepth)
	tremolo.Modulate(lfo)
	master := NewGain("master", tremolo, alarm.config.Level)
	nodes = append(nodes, lfo, tremolo, master)
	return master, nodes
}

func (alarm *Alarm) releaseLocked() {
	if alarm.cancel != nil {
		alarm.cancel()
		alarm.cancel = nil
	}
	if alarm.player != nil {
		if err := alarm.player.Close(); err != nil {
			log.Printf("audio: close alarm player: %v", err)
		}
	}
	alarm.player = nil
	alarm.nodes = nil
	alarm.running = false
}

// SetMuted suppresses future Play calls.
func (alarm *Alarm) SetMuted(muted bool) {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	alarm.muted = muted
}

// Running reports whether the alarm is ringing or waiting for the device.
func (alarm *Alarm) Running() bool {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	return alarm.running
}

// Nodes returns the names of the live graph nodes.
func (alarm *Alarm) Nodes() []string {
	alarm.mu.Lock()
	defer alarm.mu.Unlock()
	return nodeNames(alarm.nodes)
}
