// Package audio synthesizes the ambient noise texture and the session
// alarm on top of a single shared output context.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/hajimehoshi/oto/v2"
)

// ErrUnavailable indicates the host has no usable audio output.
var ErrUnavailable = errors.New("audio unavailable")

// Player is a playing stream on the shared output.
type Player interface {
	Play()
	Close() error
}

// Output creates players on the shared context.
type Output interface {
	NewPlayer(r io.Reader) Player
}

// Opener creates the shared output. The returned channel closes once the
// device is ready to play; nil means ready now. Only one output may ever
// be created.
type Opener func() (Output, <-chan struct{}, error)

type resumer interface {
	Resume() error
}

type suspender interface {
	Suspend() error
}

// Graph owns the single shared audio context. It is created on the first
// Acquire and kept for the life of the process, even when the device is
// slow to become ready.
type Graph struct {
	mu     sync.Mutex
	opener Opener
	output Output
	ready  <-chan struct{}
}

// NewGraph returns a Graph backed by the system audio device.
func NewGraph() *Graph {
	return NewGraphWithOpener(openOto)
}

// NewGraphWithOpener returns a Graph using a custom opener.
func NewGraphWithOpener(opener Opener) *Graph {
	return &Graph{opener: opener}
}

// Acquire returns the shared output once the device is ready. A creation
// failure is not cached and the next call tries again. A ctx timeout only
// fails this call; later calls wait on the same context.
func (graph *Graph) Acquire(ctx context.Context) (Output, error) {
	output, ready, err := graph.open()
	if err != nil {
		return nil, err
	}

	if ready != nil {
		select {
		case <-ready:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: wait for audio device: %v", ErrUnavailable, ctx.Err())
		}
	}

	if output, ok := output.(resumer); ok {
		if err := output.Resume(); err != nil {
			log.Printf("audio: resume context: %v", err)
		}
	}
	return output, nil
}

func (graph *Graph) open() (Output, <-chan struct{}, error) {
	graph.mu.Lock()
	defer graph.mu.Unlock()

	if graph.output != nil {
		return graph.output, graph.ready, nil
	}
	if graph.opener == nil {
		return nil, nil, ErrUnavailable
	}

	output, ready, err := graph.opener()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	graph.output = output
	graph.ready = ready
	return output, ready, nil
}

// Suspend pauses the shared context if one exists.
func (graph *Graph) Suspend() {
	graph.mu.Lock()
	defer graph.mu.Unlock()
	if output, ok := graph.output.(suspender); ok {
		if err := output.Suspend(); err != nil {
			log.Printf("audio: suspend context: %v", err)
		}
	}
}

type otoOutput struct {
	context *oto.Context
}

func openOto() (Output, <-chan struct{}, error) {
	otoContext, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatFloat32LE)
	if err != nil {
		return nil, nil, err
	}
	return &otoOutput{context: otoContext}, ready, nil
}

func (output *otoOutput) NewPlayer(r io.Reader) Player {
	return output.context.NewPlayer(r)
}

func (output *otoOutput) Resume() error {
	return output.context.Resume()
}

func (output *otoOutput) Suspend() error {
	return output.context.Suspend()
}
