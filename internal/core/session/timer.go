package session

import (
	"sync"
	"time"

	"focusdeck/internal/core/model"
)

// Alarm is the completion alert driven by the timer.
type Alarm interface {
	Play()
	Stop()
	SetMuted(muted bool)
}

// Publisher receives every committed snapshot, in order.
// Implementations must not call back into the Timer.
type Publisher interface {
	Publish(state State)
}

// Config contains runtime options for Timer.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// Timer is the countdown state machine. Remaining time is always derived
// from the absolute end timestamp, so throttled or missed ticks never
// desynchronize it from the wall clock.
type Timer struct {
	mu        sync.Mutex
	config    model.SessionConfig
	options   Config
	state     State
	alarm     Alarm
	publisher Publisher
	events    []chan Event
	stopCh    chan struct{}
	running   bool
}

// New creates a Timer in Focus mode, idle, with the full duration loaded.
func New(config model.SessionConfig, options Config) *Timer {
	if options.TickInterval <= 0 {
		options.TickInterval = 100 * time.Millisecond
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	config.CustomMinutes = model.ClampCustomMinutes(config.CustomMinutes)

	timer := &Timer{
		config:  config,
		options: options,
		state: State{
			Mode:          ModeFocus,
			Phase:         PhaseIdle,
			Muted:         config.Muted,
			CustomMinutes: config.CustomMinutes,
		},
	}
	timer.state.Duration = timer.durationForLocked(ModeFocus)
	timer.state.Remaining = timer.state.Duration
	return timer
}

// SetAlarm attaches the alert played on completion.
func (timer *Timer) SetAlarm(alarm Alarm) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.alarm = alarm
	if alarm != nil {
		alarm.SetMuted(timer.state.Muted)
	}
}

// SetPublisher attaches a snapshot publisher and sends it the current state.
func (timer *Timer) SetPublisher(publisher Publisher) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.publisher = publisher
	if publisher != nil {
		publisher.Publish(timer.snapshotLocked(timer.options.Now()))
	}
}

// Subscribe registers a new observer channel.
func (timer *Timer) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	timer.mu.Lock()
	timer.events = append(timer.events, ch)
	timer.mu.Unlock()
	return ch
}

// State returns the current snapshot.
func (timer *Timer) State() State {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.snapshotLocked(timer.options.Now())
}

// Start launches the polling loop.
func (timer *Timer) Start() {
	timer.mu.Lock()
	if timer.running {
		timer.mu.Unlock()
		return
	}
	timer.running = true
	timer.stopCh = make(chan struct{})
	stopCh := timer.stopCh
	timer.mu.Unlock()

	go timer.run(stopCh)
}

// Stop terminates the polling loop, if any, and closes observers.
func (timer *Timer) Stop() {
	timer.mu.Lock()
	if timer.running {
		close(timer.stopCh)
		timer.running = false
	}
	events := timer.events
	timer.events = nil
	timer.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Toggle starts an idle countdown or pauses a running one.
func (timer *Timer) Toggle() {
	timer.mu.Lock()
	defer timer.mu.Unlock()

	now := timer.options.Now()
	switch timer.state.Phase {
	case PhaseIdle:
		if timer.state.Remaining <= 0 {
			return
		}
		timer.state.EndAt = now.Add(timer.state.Remaining)
		timer.state.Active = true
		timer.state.Phase = PhaseRunning
	case PhaseRunning:
		remaining := remainingUntil(timer.state.EndAt, now)
		if remaining <= 0 {
			timer.completeLocked(now)
			return
		}
		timer.state.Remaining = remaining
		timer.state.EndAt = time.Time{}
		timer.state.Active = false
		timer.state.Phase = PhaseIdle
	default:
		return
	}
	timer.commitLocked(EventStateChange, now)
}

// Reset cancels the countdown and any ringing alarm, restoring the full duration.
func (timer *Timer) Reset() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.cancelLocked()
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// SwitchMode cancels the current session and loads the duration of mode.
func (timer *Timer) SwitchMode(mode Mode) {
	if !mode.Valid() {
		return
	}
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.state.Mode = mode
	timer.state.Duration = timer.durationForLocked(mode)
	timer.cancelLocked()
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// SetCustomDuration stores the custom length, clamped to [1,180] minutes.
// In Custom mode the countdown is reset to the new length.
func (timer *Timer) SetCustomDuration(minutes int) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	minutes = model.ClampCustomMinutes(minutes)
	timer.config.CustomMinutes = minutes
	timer.state.CustomMinutes = minutes
	if timer.state.Mode == ModeCustom {
		timer.state.Duration = timer.durationForLocked(ModeCustom)
		timer.cancelLocked()
	}
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// ToggleMute flips audio suppression. The countdown is untouched.
func (timer *Timer) ToggleMute() bool {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.state.Muted = !timer.state.Muted
	if timer.state.Muted {
		timer.state.Alerting = false
	}
	if timer.alarm != nil {
		timer.alarm.SetMuted(timer.state.Muted)
		if timer.state.Muted {
			timer.alarm.Stop()
		}
	}
	timer.commitLocked(EventStateChange, timer.options.Now())
	return timer.state.Muted
}

// AcknowledgeAlarm silences the completion alert. The session stays
// expired until reset or a mode switch.
func (timer *Timer) AcknowledgeAlarm() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.alarm != nil {
		timer.alarm.Stop()
	}
	if !timer.state.Alerting {
		return
	}
	timer.state.Alerting = false
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// SetAmbient records whether the ambient noise voice is on.
func (timer *Timer) SetAmbient(enabled bool) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.state.Ambient == enabled {
		return
	}
	timer.state.Ambient = enabled
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// SetTask records the label of the task being worked on.
func (timer *Timer) SetTask(label string) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if timer.state.Task == label {
		return
	}
	timer.state.Task = label
	timer.commitLocked(EventStateChange, timer.options.Now())
}

// UpdateConfig replaces the preset durations. An untouched idle session
// picks up the new length immediately.
func (timer *Timer) UpdateConfig(config model.SessionConfig) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	config.CustomMinutes = model.ClampCustomMinutes(config.CustomMinutes)
	untouched := timer.state.Phase == PhaseIdle && timer.state.Remaining == timer.state.Duration
	timer.config.Modes = config.Modes
	timer.config.CustomMinutes = config.CustomMinutes
	timer.state.CustomMinutes = config.CustomMinutes
	if untouched {
		timer.state.Duration = timer.durationForLocked(timer.state.Mode)
		timer.state.Remaining = timer.state.Duration
	}
	timer.commitLocked(EventStateChange, timer.options.Now())
}

func (timer *Timer) run(stopCh chan struct{}) {
	ticker := time.NewTicker(timer.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			timer.poll()
		}
	}
}

// poll recomputes the remaining time from the end timestamp.
func (timer *Timer) poll() {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	if !timer.state.Active {
		return
	}

	now := timer.options.Now()
	remaining := remainingUntil(timer.state.EndAt, now)
	if remaining <= 0 {
		timer.completeLocked(now)
		return
	}
	if remaining != timer.state.Remaining {
		timer.state.Remaining = remaining
		timer.commitLocked(EventProgress, now)
	}
}

func (timer *Timer) completeLocked(now time.Time) {
	timer.state.Phase = PhaseExpired
	timer.state.Active = false
	timer.state.EndAt = time.Time{}
	timer.state.Remaining = 0
	timer.state.Alerting = !timer.state.Muted
	if timer.alarm != nil {
		timer.alarm.Play()
	}
	snapshot := timer.commitLocked(EventStateChange, now)
	timer.emitLocked(Event{Type: EventCompleted, State: snapshot, At: now})
}

// cancelLocked clears every trace of the running session: end timestamp,
// ringing alarm and elapsed time.
func (timer *Timer) cancelLocked() {
	if timer.alarm != nil {
		timer.alarm.Stop()
	}
	timer.state.EndAt = time.Time{}
	timer.state.Active = false
	timer.state.Alerting = false
	timer.state.Phase = PhaseIdle
	timer.state.Remaining = timer.state.Duration
}

func (timer *Timer) durationForLocked(mode Mode) time.Duration {
	switch mode {
	case ModeShortBreak:
		return timer.config.Modes.ShortBreak
	case ModeLongBreak:
		return timer.config.Modes.LongBreak
	case ModeCustom:
		return time.Duration(timer.config.CustomMinutes) * time.Minute
	default:
		return timer.config.Modes.Focus
	}
}

func (timer *Timer) snapshotLocked(now time.Time) State {
	snapshot := timer.state
	if snapshot.Active {
		snapshot.Remaining = remainingUntil(snapshot.EndAt, now)
	}
	return snapshot
}

func (timer *Timer) commitLocked(eventType EventType, now time.Time) State {
	timer.state.Seq++
	snapshot := timer.snapshotLocked(now)
	if timer.publisher != nil {
		timer.publisher.Publish(snapshot)
	}
	timer.emitLocked(Event{Type: eventType, State: snapshot, At: now})
	return snapshot
}

func (timer *Timer) emitLocked(event Event) {
	events := append([]chan Event(nil), timer.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
