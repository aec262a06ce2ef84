package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/ports"
)

// DefaultDrainAttempts bounds the retries of the final flush on stop.
const DefaultDrainAttempts = 5

// AgentConfig contains configuration for the agent loop.
type AgentConfig struct {
	PollInterval  time.Duration
	SendInterval  time.Duration
	HardInterval  time.Duration
	MaxBatchSize  int
	DrainAttempts int
	Once          bool

	// Metadata for backend operations
	DeviceID   string
	Hostname   string
	OSArch     string
	AuthKey    string
	ServiceURL string
}

// Scorer converts landmark frames into attention samples.
// *score.Scorer satisfies this interface.
type Scorer interface {
	Score(frame domain.LandmarkFrame) (domain.Sample, error)
}

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(sampleCount int, duration time.Duration)
	OnSendError(err error, sampleCount int, retryable bool)
}

// Agent orchestrates the capture-score-upload loop.
//
// The loop is single-threaded: one goroutine reads frames, scores them,
// and sends batches, so at most one upload is ever in flight.
type Agent struct {
	config   AgentConfig
	source   ports.FrameSource
	scorer   Scorer
	sender   ports.SampleSender
	sessions ports.SessionClient
	states   ports.StateRepository
	logger   ports.Logger
	batcher  *Batcher
	emitter  SendEventEmitter
}

// NewAgent creates a new agent with the given dependencies.
func NewAgent(
	config AgentConfig,
	source ports.FrameSource,
	scorer Scorer,
	sender ports.SampleSender,
	sessions ports.SessionClient,
	states ports.StateRepository,
	logger ports.Logger,
	emitter SendEventEmitter,
) *Agent {
	if config.DrainAttempts <= 0 {
		config.DrainAttempts = DefaultDrainAttempts
	}
	return &Agent{
		config:   config,
		source:   source,
		scorer:   scorer,
		sender:   sender,
		sessions: sessions,
		states:   states,
		logger:   logger,
		batcher:  NewBatcher(config.MaxBatchSize, config.SendInterval, config.HardInterval),
		emitter:  emitter,
	}
}

// Run executes the main tracking loop. It reads frames, scores them,
// batches the samples, and uploads to the backend. Returns when the
// context is canceled or an unrecoverable error occurs; pending samples
// are drained and the session is ended before returning.
func (a *Agent) Run(ctx context.Context) error {
	// Load initial state
	state, err := a.states.Load(ctx)
	if err != nil {
		a.logger.Error("failed to load state", ports.Err(err))
		// Continue with empty state
	}

	// Resume the recorded session or open a new one.
	if state.SessionID == "" {
		id, err := a.sessions.CreateSession(ctx, time.Now(), a.metadata(state.SessionID))
		if err != nil {
			return err
		}
		state.SessionID = id
		if err := a.states.Save(ctx, state); err != nil {
			a.logger.Error("failed to save state", ports.Err(err))
		}
		a.logger.Info("session created", ports.String("session", id))
	} else {
		a.logger.Info("resuming session", ports.String("session", state.SessionID))
	}

	// Open the frame source at the recorded position.
	if err := a.source.Open(ctx, &state); err != nil {
		return err
	}
	defer a.source.Close()

	back := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)

	for {
		select {
		case <-ctx.Done():
			a.drain(&state, back)
			a.endSession(&state)
			return ctx.Err()
		default:
		}

		frame, _, err := a.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Feed exhausted for now; flush what we have.
				if a.batcher.HasPending() {
					a.trySend(ctx, &state, back)
				}

				if a.config.Once {
					a.drain(&state, back)
					a.endSession(&state)
					return nil
				}

				if a.sleep(ctx, a.config.PollInterval) {
					a.drain(&state, back)
					a.endSession(&state)
					return ctx.Err()
				}
				continue
			}

			// Other error, log and retry
			a.logger.Error("read error", ports.Err(err))
			if a.sleep(ctx, a.config.PollInterval) {
				a.drain(&state, back)
				a.endSession(&state)
				return ctx.Err()
			}
			continue
		}

		sample, err := a.scorer.Score(frame)
		if err != nil {
			if errors.Is(err, domain.ErrNoLandmarks) {
				a.logger.Debug("frame skipped", ports.Uint64("seq", frame.Seq))
				continue
			}
			a.logger.Error("score error", ports.Err(err))
			continue
		}
		sample.SessionID = state.SessionID

		shouldSend := a.batcher.Add(sample)
		if shouldSend || a.batcher.ShouldSend() {
			a.trySend(ctx, &state, back)
		}
	}
}

// sleep waits for d or until ctx is done; returns true when ctx ended.
func (a *Agent) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}

// trySend attempts to send the current batch once.
func (a *Agent) trySend(ctx context.Context, state *domain.State, back *backoff) {
	batch := a.batcher.Batch()
	if batch.Empty() {
		return
	}

	start := time.Now()
	err := a.sender.Send(ctx, batch, a.metadata(state.SessionID))
	duration := time.Since(start)

	if err != nil {
		a.logger.Error("send failed",
			ports.Err(err),
			ports.Int("samples", batch.Size()),
		)

		if a.emitter != nil {
			a.emitter.OnSendError(err, batch.Size(), true)
		}

		// A resumed session may have been ended server-side; retrying
		// against it can never succeed, so open a fresh one. The pending
		// batch is kept and goes out on the next trigger.
		if errors.Is(err, domain.ErrSessionClosed) {
			a.rotateSession(ctx, state)
			return
		}

		back.Sleep(ctx.Done())
		return
	}

	a.logger.Info("sent batch",
		ports.Int("samples", batch.Size()),
		ports.Duration("duration", duration),
	)

	if a.emitter != nil {
		a.emitter.OnSendSuccess(batch.Size(), duration)
	}

	a.commit(ctx, state, batch)
	a.batcher.Reset()
	back.Reset()
}

// drain performs the final flush on stop: a bounded number of send
// attempts for whatever is still pending, using a fresh context since
// the run context is already canceled.
func (a *Agent) drain(state *domain.State, back *backoff) {
	if !a.batcher.HasPending() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := a.batcher.Batch()
	for attempt := 1; attempt <= a.config.DrainAttempts; attempt++ {
		err := a.sender.Send(ctx, batch, a.metadata(state.SessionID))
		if errors.Is(err, domain.ErrSessionClosed) {
			if !a.rotateSession(ctx, state) {
				break
			}
			err = a.sender.Send(ctx, batch, a.metadata(state.SessionID))
		}
		if err == nil {
			a.logger.Info("drained pending batch",
				ports.Int("samples", batch.Size()),
				ports.Int("attempt", attempt),
			)
			a.commit(ctx, state, batch)
			a.batcher.Reset()
			return
		}

		a.logger.Error("drain attempt failed",
			ports.Err(err),
			ports.Int("attempt", attempt),
			ports.Int("max_attempts", a.config.DrainAttempts),
		)
		if attempt < a.config.DrainAttempts {
			back.Sleep(nil)
		}
	}

	a.logger.Warn("giving up on pending batch",
		ports.Int("samples", batch.Size()),
	)
}

// rotateSession replaces a session the server has closed with a fresh one
// and persists the new ID. Returns false when the backend refused to open
// a new session.
func (a *Agent) rotateSession(ctx context.Context, state *domain.State) bool {
	closed := state.SessionID
	id, err := a.sessions.CreateSession(ctx, time.Now(), a.metadata(""))
	if err != nil {
		a.logger.Error("failed to open replacement session",
			ports.String("closed_session", closed),
			ports.Err(err),
		)
		return false
	}

	state.SessionID = id
	if err := a.states.Save(ctx, *state); err != nil {
		a.logger.Error("failed to save state", ports.Err(err))
	}
	a.logger.Warn("session was closed server-side, opened a new one",
		ports.String("closed_session", closed),
		ports.String("session", id),
	)
	return true
}

// commit updates and persists state after a successful send.
func (a *Agent) commit(ctx context.Context, state *domain.State, batch *domain.Batch) {
	if last := batch.LastSample(); last != nil {
		feedPath, feedOffset := a.source.CurrentPosition()
		state.LastSeq = last.Seq
		state.UpdatePosition(feedPath, feedOffset)
		now := time.Now()
		state.LastCommitAt = now
		state.LastSendAt = now
	}

	if err := a.states.Save(ctx, *state); err != nil {
		a.logger.Error("failed to save state", ports.Err(err))
	}
}

// endSession closes the session on the backend and clears it from state so
// the next run opens a fresh one.
func (a *Agent) endSession(state *domain.State) {
	if state.SessionID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.sessions.EndSession(ctx, state.SessionID, time.Now(), a.metadata(state.SessionID)); err != nil {
		a.logger.Error("failed to end session",
			ports.String("session", state.SessionID),
			ports.Err(err),
		)
		return
	}
	a.logger.Info("session ended", ports.String("session", state.SessionID))

	state.SessionID = ""
	state.FeedPath = ""
	state.FeedOffset = 0
	state.LastSeq = 0
	if err := a.states.Save(ctx, *state); err != nil {
		a.logger.Error("failed to save state", ports.Err(err))
	}
}

// metadata builds the send metadata for backend operations.
func (a *Agent) metadata(sessionID string) ports.SendMetadata {
	return ports.SendMetadata{
		SessionID:  sessionID,
		DeviceID:   a.config.DeviceID,
		Hostname:   a.config.Hostname,
		OSArch:     a.config.OSArch,
		AuthKey:    a.config.AuthKey,
		ServiceURL: a.config.ServiceURL,
	}
}
