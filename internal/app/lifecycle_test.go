package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/pkg/log"
)

// recordingStateEmitter tracks state change events for testing.
type recordingStateEmitter struct {
	mu     sync.Mutex
	events []stateChange
}

type stateChange struct {
	previous State
	current  State
	reason   string
}

func (m *recordingStateEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChange{previous, current, reason})
}

func (m *recordingStateEmitter) Events() []stateChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChange{}, m.events...)
}

func TestLifecycle_InitialState(t *testing.T) {
	l := NewLifecycle(log.NewNoop(), nil)

	if l.State() != StateStopped {
		t.Errorf("initial state = %v, want StateStopped", l.State())
	}
	if !l.CanStart() {
		t.Error("CanStart() = false for a stopped lifecycle")
	}
	if l.CanStop() {
		t.Error("CanStop() = true for a stopped lifecycle")
	}
}

func TestLifecycle_FullCycle(t *testing.T) {
	emitter := &recordingStateEmitter{}
	l := NewLifecycle(log.NewNoop(), emitter)

	steps := []State{StateStarting, StateRunning, StateStopping, StateStopped}
	for _, s := range steps {
		if err := l.TransitionTo(s, "test"); err != nil {
			t.Fatalf("TransitionTo(%v) error = %v", s, err)
		}
	}

	events := emitter.Events()
	if len(events) != len(steps) {
		t.Fatalf("events = %d, want %d", len(events), len(steps))
	}
	if events[0].previous != StateStopped || events[0].current != StateStarting {
		t.Errorf("first event = %v -> %v", events[0].previous, events[0].current)
	}
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from []State
		to   State
		want error
	}{
		{"stopped to running", nil, StateRunning, domain.ErrNotRunning},
		{"stopped to stopping", nil, StateStopping, domain.ErrNotRunning},
		{"running to starting", []State{StateStarting, StateRunning}, StateStarting, domain.ErrAlreadyRunning},
		{"crashed to running", []State{StateStarting, StateCrashed}, StateRunning, domain.ErrNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(log.NewNoop(), nil)
			for _, s := range tt.from {
				if err := l.TransitionTo(s, "setup"); err != nil {
					t.Fatalf("setup transition to %v: %v", s, err)
				}
			}
			if err := l.TransitionTo(tt.to, "test"); !errors.Is(err, tt.want) {
				t.Errorf("TransitionTo(%v) error = %v, want %v", tt.to, err, tt.want)
			}
		})
	}
}

func TestLifecycle_CrashedCanRestart(t *testing.T) {
	l := NewLifecycle(log.NewNoop(), nil)

	if err := l.TransitionTo(StateStarting, "start"); err != nil {
		t.Fatal(err)
	}
	if err := l.TransitionTo(StateCrashed, "boom"); err != nil {
		t.Fatal(err)
	}
	if !l.CanStart() {
		t.Error("CanStart() = false for a crashed lifecycle")
	}
	if err := l.TransitionTo(StateStarting, "restart"); err != nil {
		t.Errorf("restart after crash: %v", err)
	}
}

func TestLifecycle_WaitWithTimeout(t *testing.T) {
	l := NewLifecycle(log.NewNoop(), nil)

	l.AddWorker()
	go func() {
		time.Sleep(10 * time.Millisecond)
		l.WorkerDone()
	}()

	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() error = %v", err)
	}
}

func TestLifecycle_WaitWithTimeout_Expires(t *testing.T) {
	l := NewLifecycle(log.NewNoop(), nil)

	l.AddWorker() // never done
	defer l.WorkerDone()

	err := l.WaitWithTimeout(20 * time.Millisecond)
	if !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Errorf("WaitWithTimeout() error = %v, want ErrShutdownTimeout", err)
	}
}
