package audio

import (
	"io"
	"math"
	"sync"
)

const (
	SampleRate   = 44100
	ChannelCount = 2

	// silentLevel is the floor for exponential ramps, which cannot reach zero.
	silentLevel = 0.001
)

// Node is a mono signal stage. Each call to Next yields one sample.
type Node interface {
	Name() string
	Next() float64
}

// LoopBuffer replays a fixed sample buffer forever.
type LoopBuffer struct {
	name string
	data []float64
	pos  int
}

// NewLoopBuffer creates a looping source over data.
func NewLoopBuffer(name string, data []float64) *LoopBuffer {
	return &LoopBuffer{name: name, data: data}
}

func (node *LoopBuffer) Name() string { return node.name }

func (node *LoopBuffer) Next() float64 {
	if len(node.data) == 0 {
		return 0
	}
	sample := node.data[node.pos]
	node.pos++
	if node.pos >= len(node.data) {
		node.pos = 0
	}
	return sample
}

// Biquad is a second order low-pass filter (RBJ cookbook coefficients).
type Biquad struct {
	name           string
	input          Node
	b0, b1, b2     float64
	a1, a2         float64
	x1, x2, y1, y2 float64
}

// NewLowPass creates a low-pass filter at cutoff Hz with resonance q.
func NewLowPass(name string, input Node, cutoff, q float64) *Biquad {
	omega := 2 * math.Pi * cutoff / SampleRate
	alpha := math.Sin(omega) / (2 * q)
	cosOmega := math.Cos(omega)
	a0 := 1 + alpha

	return &Biquad{
		name:  name,
		input: input,
		b0:    (1 - cosOmega) / 2 / a0,
		b1:    (1 - cosOmega) / a0,
		b2:    (1 - cosOmega) / 2 / a0,
		a1:    -2 * cosOmega / a0,
		a2:    (1 - alpha) / a0,
	}
}

func (node *Biquad) Name() string { return node.name }

func (node *Biquad) Next() float64 {
	x := node.input.Next()
	y := node.b0*x + node.b1*node.x1 + node.b2*node.x2 - node.a1*node.y1 - node.a2*node.y2
	node.x2, node.x1 = node.x1, x
	node.y2, node.y1 = node.y1, y
	return y
}

// Param is a gain value that can be automated with exponential ramps.
type Param struct {
	value   float64
	start   float64
	target  float64
	total   int
	elapsed int
}

// Value returns the current value.
func (param *Param) Value() float64 { return param.value }

// Set jumps to value and cancels any ramp.
func (param *Param) Set(value float64) {
	param.value = value
	param.target = value
	param.total = 0
	param.elapsed = 0
}

// RampTo moves exponentially from the current value to target over samples.
func (param *Param) RampTo(target float64, samples int) {
	if target < silentLevel {
		target = silentLevel
	}
	if param.value < silentLevel {
		param.value = silentLevel
	}
	if samples <= 0 {
		param.Set(target)
		return
	}
	param.start = param.value
	param.target = target
	param.total = samples
	param.elapsed = 0
}

// Ramping reports whether a ramp is still in progress.
func (param *Param) Ramping() bool {
	return param.elapsed < param.total
}

func (param *Param) next() float64 {
	if param.elapsed < param.total {
		fraction := float64(param.elapsed) / float64(param.total)
		param.value = param.start * math.Pow(param.target/param.start, fraction)
		param.elapsed++
		return param.value
	}
	param.value = param.target
	return param.value
}

// Gain scales its input by an automatable level, optionally modulated by
// another node whose output is added to the level.
type Gain struct {
	name  string
	input Node
	level Param
	mod   Node
}

// NewGain creates a gain stage at the given level.
func NewGain(name string, input Node, level float64) *Gain {
	gain := &Gain{name: name, input: input}
	gain.level.Set(level)
	return gain
}

// Modulate adds mod to the gain level on every sample.
func (node *Gain) Modulate(mod Node) {
	node.mod = mod
}

// Level returns the automatable gain parameter.
func (node *Gain) Level() *Param { return &node.level }

func (node *Gain) Name() string { return node.name }

func (node *Gain) Next() float64 {
	level := node.level.next()
	if node.mod != nil {
		level += node.mod.Next()
	}
	return node.input.Next() * level
}

// Oscillator is a sine wave generator.
type Oscillator struct {
	name      string
	frequency float64
	amplitude float64
	phase     float64
}

// NewOscillator creates a sine oscillator.
func NewOscillator(name string, frequency, amplitude float64) *Oscillator {
	return &Oscillator{name: name, frequency: frequency, amplitude: amplitude}
}

func (node *Oscillator) Name() string { return node.name }

func (node *Oscillator) Next() float64 {
	sample := node.amplitude * math.Sin(2*math.Pi*node.phase)
	node.phase += node.frequency / SampleRate
	if node.phase >= 1 {
		node.phase -= 1
	}
	return sample
}

// Mixer sums its inputs and scales the result.
type Mixer struct {
	name   string
	inputs []Node
	scale  float64
}

// NewMixer creates a summing stage.
func NewMixer(name string, scale float64, inputs ...Node) *Mixer {
	return &Mixer{name: name, inputs: inputs, scale: scale}
}

func (node *Mixer) Name() string { return node.name }

func (node *Mixer) Next() float64 {
	sum := 0.0
	for _, input := range node.inputs {
		sum += input.Next()
	}
	return sum * node.scale
}

// voice renders a node chain as an endless float32 LE stereo stream.
type voice struct {
	mu  sync.Mutex
	out Node
}

func newVoice(out Node) *voice {
	return &voice{out: out}
}

// do runs fn while the render goroutine is held off.
func (v *voice) do(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn()
}

func (v *voice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	frames := len(p) / (4 * ChannelCount)
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	for i := 0; i < frames; i++ {
		putStereoF32(p, i, clamp(v.out.Next(), -1, 1))
	}
	return frames * 4 * ChannelCount, nil
}

func putStereoF32(buf []byte, frame int, sample float64) {
	bits := math.Float32bits(float32(sample))
	offset := frame * 8
	for channel := 0; channel < ChannelCount; channel++ {
		base := offset + channel*4
		buf[base] = byte(bits)
		buf[base+1] = byte(bits >> 8)
		buf[base+2] = byte(bits >> 16)
		buf[base+3] = byte(bits >> 24)
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
