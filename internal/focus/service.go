// Package focus composes the timer, audio units and mirror channel into
// the single API driven by every host surface.
package focus

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"focusdeck/internal/audio"
	"focusdeck/internal/core/model"
	"focusdeck/internal/core/session"
	"focusdeck/internal/mirror"
	"focusdeck/internal/tasks"
)

const (
	eventBuffer      = 16
	completionBuffer = 4
	noiseAcquire     = 2 * time.Second
)

// TaskSource supplies the currently focused task label.
type TaskSource interface {
	FocusedTask(ctx context.Context) (string, error)
}

// Options configures a Service.
type Options struct {
	Session session.Config
	Config  model.SessionConfig
	Graph   *audio.Graph
	Noise   audio.NoiseConfig
	Alarm   audio.AlarmConfig
	Tasks   TaskSource
	Windows mirror.WindowFactory
}

// Service is the host-facing facade over the session engine.
type Service struct {
	timer  *session.Timer
	graph  *audio.Graph
	noise  *audio.Noise
	alarm  *audio.Alarm
	mirror *mirror.Channel
	tasks  TaskSource

	completions chan session.Event
	closeOnce   sync.Once
}

// New wires the engine together. The polling loop starts with Start.
func New(options Options) *Service {
	if options.Graph == nil {
		options.Graph = audio.NewGraph()
	}
	if options.Noise.Level <= 0 {
		options.Noise = audio.DefaultNoiseConfig()
	}
	if len(options.Alarm.Frequencies) == 0 {
		options.Alarm = audio.DefaultAlarmConfig()
	}

	service := &Service{
		timer:       session.New(options.Config, options.Session),
		graph:       options.Graph,
		noise:       audio.NewNoise(options.Graph, options.Noise),
		alarm:       audio.NewAlarm(options.Graph, options.Alarm),
		mirror:      mirror.New(options.Windows),
		tasks:       options.Tasks,
		completions: make(chan session.Event, completionBuffer),
	}
	service.timer.SetAlarm(service.alarm)
	service.timer.SetPublisher(service.mirror)

	events := service.timer.Subscribe(eventBuffer)
	go service.forwardCompletions(events)
	return service
}

// Start launches the countdown polling loop.
func (service *Service) Start() {
	service.timer.Start()
}

// State returns the current snapshot.
func (service *Service) State() session.State {
	return service.timer.State()
}

// Toggle starts, pauses or resumes the countdown.
func (service *Service) Toggle() {
	service.timer.Toggle()
}

// Reset returns the current mode to its full duration.
func (service *Service) Reset() {
	service.timer.Reset()
}

// SwitchMode loads a different mode, cancelling any running countdown.
func (service *Service) SwitchMode(mode session.Mode) {
	service.timer.SwitchMode(mode)
}

// SetCustomDuration stores the custom length in minutes.
func (service *Service) SetCustomDuration(minutes int) {
	service.timer.SetCustomDuration(minutes)
}

// ToggleMute flips alarm muting and returns the new value.
func (service *Service) ToggleMute() bool {
	return service.timer.ToggleMute()
}

// ToggleNoise starts or stops the ambient texture and returns whether it
// is now running.
func (service *Service) ToggleNoise() bool {
	ctx, cancel := context.WithTimeout(context.Background(), noiseAcquire)
	defer cancel()
	running := service.noise.Toggle(ctx)
	service.timer.SetAmbient(running)
	return running
}

// SetNoiseLevel changes the ambient level.
func (service *Service) SetNoiseLevel(level float64) {
	service.noise.SetLevel(level)
}

// AcknowledgeAlarm silences a ringing alarm. The session stays expired
// until reset or a mode switch.
func (service *Service) AcknowledgeAlarm() {
	service.timer.AcknowledgeAlarm()
}

// AlarmRinging reports whether the alarm is audible.
func (service *Service) AlarmRinging() bool {
	return service.alarm.Running()
}

// OpenMirror shows the detached mini-player.
func (service *Service) OpenMirror() {
	service.mirror.OpenMirror()
}

// CloseMirror closes the detached mini-player.
func (service *Service) CloseMirror() {
	service.mirror.CloseMirror()
}

// Mirror exposes the channel for surfaces that subscribe directly.
func (service *Service) Mirror() *mirror.Channel {
	return service.mirror
}

// ApplyConfig replaces mode durations and the custom length.
func (service *Service) ApplyConfig(config model.SessionConfig) {
	service.timer.UpdateConfig(config)
}

// Completions delivers one event per finished countdown. The channel is
// informative only and closes once a started service is closed.
func (service *Service) Completions() <-chan session.Event {
	return service.completions
}

// RefreshTask reads the focused task label into the session.
func (service *Service) RefreshTask(ctx context.Context) error {
	if service.tasks == nil {
		return nil
	}
	label, err := service.tasks.FocusedTask(ctx)
	if errors.Is(err, tasks.ErrNoTask) {
		label, err = "", nil
	}
	if err != nil {
		return err
	}
	service.timer.SetTask(label)
	return nil
}

// Close stops the countdown loop, silences the alarm and closes the
// mirror window. The ambient texture is left to the host.
func (service *Service) Close() {
	service.closeOnce.Do(func() {
		service.timer.Stop()
		service.alarm.Stop()
		service.mirror.CloseMirror()
	})
}

// Shutdown closes the service and releases the audio device.
func (service *Service) Shutdown() {
	service.Close()
	service.noise.Stop()
	service.graph.Suspend()
}

func (service *Service) forwardCompletions(events <-chan session.Event) {
	defer close(service.completions)
	for event := range events {
		if event.Type != session.EventCompleted {
			continue
		}
		select {
		case service.completions <- event:
		default:
			log.Printf("focus: completion dropped, no listener")
		}
	}
}
