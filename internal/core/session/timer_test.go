package session

import (
	"sync"
	"testing"
	"time"

	"focusdeck/internal/core/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

type fakeAlarm struct {
	muted   bool
	ringing bool
	plays   int
	stops   int
}

func (alarm *fakeAlarm) Play() {
	if alarm.muted || alarm.ringing {
		return
	}
	alarm.ringing = true
	alarm.plays++
}

func (alarm *fakeAlarm) Stop() {
	alarm.ringing = false
	alarm.stops++
}

func (alarm *fakeAlarm) SetMuted(muted bool) {
	alarm.muted = muted
}

type recordingPublisher struct {
	states []State
}

func (publisher *recordingPublisher) Publish(state State) {
	publisher.states = append(publisher.states, state)
}

func (publisher *recordingPublisher) last() State {
	return publisher.states[len(publisher.states)-1]
}

func newTestTimer(clock *fakeClock) (*Timer, *fakeAlarm) {
	timer := New(model.DefaultSessionConfig(), Config{Now: clock.Now})
	alarm := &fakeAlarm{}
	timer.SetAlarm(alarm)
	return timer, alarm
}

func TestNewTimerStartsIdleInFocus(t *testing.T) {
	timer, _ := newTestTimer(newFakeClock())
	state := timer.State()

	if state.Mode != ModeFocus {
		t.Errorf("Expected mode %s, got %s", ModeFocus, state.Mode)
	}
	if state.Phase != PhaseIdle || state.Active {
		t.Errorf("Expected idle inactive timer, got phase %s active %v", state.Phase, state.Active)
	}
	if state.DurationSeconds() != 1500 || state.RemainingSeconds() != 1500 {
		t.Errorf("Expected 1500s duration and remaining, got %d/%d", state.DurationSeconds(), state.RemainingSeconds())
	}
	if !state.EndAt.IsZero() {
		t.Error("EndAt should be zero while idle")
	}
}

func TestDriftCorrectionIgnoresTickCount(t *testing.T) {
	tests := []struct {
		name  string
		ticks int
		gap   time.Duration
	}{
		{name: "no ticks", ticks: 0, gap: 7 * time.Minute},
		{name: "one tick", ticks: 1, gap: 7 * time.Minute},
		{name: "many ticks", ticks: 4200, gap: 7 * time.Minute},
		{name: "throttled gap", ticks: 2, gap: 13*time.Minute + 20*time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			timer, _ := newTestTimer(clock)
			timer.Toggle()

			step := time.Duration(0)
			if tt.ticks > 0 {
				step = tt.gap / time.Duration(tt.ticks)
			}
			elapsed := time.Duration(0)
			for i := 0; i < tt.ticks; i++ {
				clock.Advance(step)
				elapsed += step
				timer.poll()
			}
			clock.Advance(tt.gap - elapsed)

			timer.Toggle()
			state := timer.State()
			want := 1500 - int(tt.gap/time.Second)
			if state.RemainingSeconds() != want {
				t.Errorf("Expected %d seconds remaining, got %d", want, state.RemainingSeconds())
			}
			if state.Active || !state.EndAt.IsZero() {
				t.Error("Paused timer should be inactive with zero EndAt")
			}
		})
	}
}

func TestRemainingRoundsUp(t *testing.T) {
	clock := newFakeClock()
	timer, _ := newTestTimer(clock)
	timer.Toggle()

	clock.Advance(1500 * time.Millisecond)
	if got := timer.State().RemainingSeconds(); got != 1499 {
		t.Errorf("Expected 1499 seconds while running, got %d", got)
	}
	timer.Toggle()
	if got := timer.State().RemainingSeconds(); got != 1499 {
		t.Errorf("Expected 1499 seconds after pause, got %d", got)
	}
}

func TestPauseFreezesRemaining(t *testing.T) {
	clock := newFakeClock()
	timer, _ := newTestTimer(clock)
	timer.Toggle()
	clock.Advance(10 * time.Second)
	timer.Toggle()

	clock.Advance(time.Hour)
	timer.poll()
	if got := timer.State().RemainingSeconds(); got != 1490 {
		t.Errorf("Expected remaining frozen at 1490, got %d", got)
	}

	timer.Toggle()
	clock.Advance(5 * time.Second)
	timer.Toggle()
	if got := timer.State().RemainingSeconds(); got != 1485 {
		t.Errorf("Expected 1485 after resume and pause, got %d", got)
	}
}

func TestSetCustomDurationClamps(t *testing.T) {
	tests := []struct {
		input int
		want  int
	}{
		{input: -5, want: 1},
		{input: 0, want: 1},
		{input: 1, want: 1},
		{input: 45, want: 45},
		{input: 180, want: 180},
		{input: 181, want: 180},
		{input: 200, want: 180},
	}

	for _, tt := range tests {
		timer, _ := newTestTimer(newFakeClock())
		timer.SetCustomDuration(tt.input)
		if got := timer.State().CustomMinutes; got != tt.want {
			t.Errorf("SetCustomDuration(%d): expected %d minutes, got %d", tt.input, tt.want, got)
		}
	}
}

func TestScenarioBCustomDurationClampedThenSwitched(t *testing.T) {
	timer, _ := newTestTimer(newFakeClock())
	timer.SetCustomDuration(200)
	if timer.State().CustomMinutes != 180 {
		t.Fatalf("Expected custom minutes 180, got %d", timer.State().CustomMinutes)
	}
	if timer.State().Mode != ModeFocus {
		t.Error("SetCustomDuration should not change mode")
	}

	timer.SwitchMode(ModeCustom)
	state := timer.State()
	if state.DurationSeconds() != 10800 {
		t.Errorf("Expected 10800 seconds, got %d", state.DurationSeconds())
	}
	if state.RemainingSeconds() != 10800 {
		t.Errorf("Expected remaining 10800 seconds, got %d", state.RemainingSeconds())
	}
}

func TestSetCustomDurationResetsCustomSession(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	timer.SwitchMode(ModeCustom)
	timer.Toggle()
	clock.Advance(time.Minute)

	timer.SetCustomDuration(10)
	state := timer.State()
	if state.Mode != ModeCustom {
		t.Errorf("Expected mode to stay custom, got %s", state.Mode)
	}
	if state.Active || state.Phase != PhaseIdle {
		t.Error("Expected countdown to be cancelled")
	}
	if state.RemainingSeconds() != 600 {
		t.Errorf("Expected 600 seconds remaining, got %d", state.RemainingSeconds())
	}
	if alarm.stops == 0 {
		t.Error("Expected alarm stop as part of the reset")
	}
}

func TestScenarioAFocusExpiresAndRings(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	events := timer.Subscribe(8)

	timer.Toggle()
	clock.Advance(1500 * time.Second)
	timer.poll()

	state := timer.State()
	if state.Phase != PhaseExpired {
		t.Errorf("Expected expired phase, got %s", state.Phase)
	}
	if state.Active || !state.EndAt.IsZero() {
		t.Error("Expired timer should be inactive with zero EndAt")
	}
	if state.RemainingSeconds() != 0 {
		t.Errorf("Expected 0 remaining, got %d", state.RemainingSeconds())
	}
	if !alarm.ringing {
		t.Error("Expected alarm to be ringing")
	}
	if !state.Alerting {
		t.Error("Expected alerting snapshot")
	}

	completed := 0
	for len(events) > 0 {
		if event := <-events; event.Type == EventCompleted {
			completed++
		}
	}
	if completed != 1 {
		t.Errorf("Expected one completion event, got %d", completed)
	}
}

func TestCompletionFiresOnceAcrossPolls(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	timer.Toggle()
	clock.Advance(2 * time.Hour)
	timer.poll()
	timer.poll()
	timer.poll()

	if alarm.plays != 1 {
		t.Errorf("Expected alarm played once, got %d", alarm.plays)
	}
}

func TestToggleIgnoredWhenExpired(t *testing.T) {
	clock := newFakeClock()
	timer, _ := newTestTimer(clock)
	timer.Toggle()
	clock.Advance(1500 * time.Second)
	timer.poll()

	timer.Toggle()
	if timer.State().Phase != PhaseExpired {
		t.Error("Toggle should not leave the expired phase")
	}
}

func TestMutedCompletionStillCompletes(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	events := timer.Subscribe(8)
	if !timer.ToggleMute() {
		t.Fatal("Expected timer to be muted")
	}

	timer.Toggle()
	clock.Advance(1500 * time.Second)
	timer.poll()

	if timer.State().Active {
		t.Error("Expected inactive timer after completion")
	}
	if alarm.ringing || alarm.plays != 0 {
		t.Error("Muted completion should not ring the alarm")
	}
	if timer.State().Alerting {
		t.Error("Muted completion should not alert")
	}
	found := false
	for len(events) > 0 {
		if event := <-events; event.Type == EventCompleted {
			found = true
		}
	}
	if !found {
		t.Error("Expected completion event while muted")
	}
}

func TestMuteStopsRingingAlarm(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	timer.Toggle()
	clock.Advance(1500 * time.Second)
	timer.poll()

	timer.ToggleMute()
	if alarm.ringing {
		t.Error("Muting should silence a ringing alarm")
	}
	if timer.State().Alerting {
		t.Error("Muting should clear the alert")
	}
}

func TestAcknowledgeAlarmKeepsSessionExpired(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	publisher := &recordingPublisher{}
	timer.SetPublisher(publisher)

	timer.Toggle()
	clock.Advance(1500 * time.Second)
	timer.poll()
	published := len(publisher.states)

	timer.AcknowledgeAlarm()
	if alarm.ringing {
		t.Error("Expected alarm silenced")
	}
	state := publisher.last()
	if state.Alerting {
		t.Error("Expected alert cleared in published snapshot")
	}
	if state.Phase != PhaseExpired {
		t.Errorf("Expected expired phase, got %s", state.Phase)
	}

	timer.AcknowledgeAlarm()
	if len(publisher.states) != published+1 {
		t.Errorf("Expected a single publish for acknowledge, got %d", len(publisher.states)-published)
	}

	timer.Reset()
	if timer.State().Alerting {
		t.Error("Reset should not alert")
	}
}

func TestExitPathsStopAlarm(t *testing.T) {
	exits := map[string]func(*Timer){
		"reset":       func(timer *Timer) { timer.Reset() },
		"switch mode": func(timer *Timer) { timer.SwitchMode(ModeShortBreak) },
		"same mode":   func(timer *Timer) { timer.SwitchMode(ModeFocus) },
	}

	for name, exit := range exits {
		t.Run(name, func(t *testing.T) {
			clock := newFakeClock()
			timer, alarm := newTestTimer(clock)
			timer.Toggle()
			clock.Advance(1500 * time.Second)
			timer.poll()
			if !alarm.ringing {
				t.Fatal("Expected alarm ringing before exit")
			}

			exit(timer)
			state := timer.State()
			if alarm.ringing {
				t.Error("Alarm should be stopped on exit")
			}
			if state.Phase != PhaseIdle || !state.EndAt.IsZero() {
				t.Errorf("Expected clean idle state, got phase %s", state.Phase)
			}
			if state.Remaining != state.Duration {
				t.Error("Expected remaining restored to full duration")
			}
		})
	}
}

func TestResetCancelsPendingCompletion(t *testing.T) {
	clock := newFakeClock()
	timer, alarm := newTestTimer(clock)
	timer.Toggle()
	clock.Advance(time.Minute)
	timer.Reset()

	clock.Advance(2 * time.Hour)
	timer.poll()
	if alarm.plays != 0 {
		t.Error("Reset timer must not complete later")
	}
	if timer.State().Phase != PhaseIdle {
		t.Error("Expected idle phase after reset")
	}
}

func TestSwitchModeLoadsDurations(t *testing.T) {
	tests := []struct {
		mode Mode
		want int
	}{
		{mode: ModeFocus, want: 1500},
		{mode: ModeShortBreak, want: 300},
		{mode: ModeLongBreak, want: 900},
		{mode: ModeCustom, want: 1800},
	}

	timer, _ := newTestTimer(newFakeClock())
	for _, tt := range tests {
		timer.SwitchMode(tt.mode)
		state := timer.State()
		if state.Mode != tt.mode || state.DurationSeconds() != tt.want {
			t.Errorf("SwitchMode(%s): expected %ds, got %s %ds", tt.mode, tt.want, state.Mode, state.DurationSeconds())
		}
	}

	timer.SwitchMode(Mode("bogus"))
	if timer.State().Mode != ModeCustom {
		t.Error("Unknown mode should be ignored")
	}
}

func TestPublisherSeesEveryTransitionInOrder(t *testing.T) {
	clock := newFakeClock()
	timer, _ := newTestTimer(clock)
	publisher := &recordingPublisher{}
	timer.SetPublisher(publisher)
	if len(publisher.states) != 1 {
		t.Fatalf("Expected an initial snapshot, got %d", len(publisher.states))
	}

	timer.Toggle()
	clock.Advance(3 * time.Second)
	timer.poll()
	timer.SwitchMode(ModeLongBreak)

	for i := 1; i < len(publisher.states); i++ {
		if publisher.states[i].Seq <= publisher.states[i-1].Seq {
			t.Errorf("Sequence not increasing at %d", i)
		}
	}
	if publisher.last() != timer.State() {
		t.Error("Last published snapshot should match current state")
	}
}

func TestPollPublishesOnlyOnSecondChange(t *testing.T) {
	clock := newFakeClock()
	timer, _ := newTestTimer(clock)
	publisher := &recordingPublisher{}
	timer.SetPublisher(publisher)
	timer.Toggle()
	before := len(publisher.states)

	for i := 0; i < 10; i++ {
		clock.Advance(100 * time.Millisecond)
		timer.poll()
	}
	if len(publisher.states) != before+1 {
		t.Errorf("Expected one progress publish per elapsed second, got %d", len(publisher.states)-before)
	}
}

func TestSetTaskAndAmbientRepublish(t *testing.T) {
	timer, _ := newTestTimer(newFakeClock())
	publisher := &recordingPublisher{}
	timer.SetPublisher(publisher)

	timer.SetTask("Chapter 4 exercises")
	timer.SetTask("Chapter 4 exercises")
	timer.SetAmbient(true)

	if len(publisher.states) != 3 {
		t.Errorf("Expected 3 publishes, got %d", len(publisher.states))
	}
	last := publisher.last()
	if last.Task != "Chapter 4 exercises" || !last.Ambient {
		t.Errorf("Unexpected snapshot %+v", last)
	}
}

func TestUpdateConfigReloadsUntouchedSession(t *testing.T) {
	timer, _ := newTestTimer(newFakeClock())
	config := model.DefaultSessionConfig()
	config.Modes.Focus = 50 * time.Minute
	timer.UpdateConfig(config)

	if got := timer.State().DurationSeconds(); got != 3000 {
		t.Errorf("Expected 3000 seconds, got %d", got)
	}
}

func TestStartStopLoop(t *testing.T) {
	timer := New(model.DefaultSessionConfig(), Config{TickInterval: time.Millisecond})
	events := timer.Subscribe(1)
	timer.Start()
	timer.Start()
	timer.Stop()
	timer.Stop()

	for range events {
	}
}

func TestStopClosesObserversWithoutLoop(t *testing.T) {
	timer := New(model.DefaultSessionConfig(), Config{})
	events := timer.Subscribe(1)
	timer.Stop()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("Expected no event before close")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected observer channel closed")
	}
}
