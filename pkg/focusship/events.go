package focusship

import "time"

// State is the public lifecycle state of a tracker.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent is emitted after a batch upload succeeds.
type SendSuccessEvent struct {
	SampleCount int
	Duration    time.Duration
}

// SendErrorEvent is emitted after a batch upload fails.
type SendErrorEvent struct {
	Error       error
	SampleCount int
	Retryable   bool
}

// EventHandler receives tracker events. Handlers are called synchronously
// from the tracking goroutine and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSendSuccess(event SendSuccessEvent)
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler provides no-op implementations of all EventHandler
// methods. Embed it to implement only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}
