package focusship

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/attn-labs/focusship/internal/adapters/fs"
	httpAdapter "github.com/attn-labs/focusship/internal/adapters/http"
	"github.com/attn-labs/focusship/internal/app"
	"github.com/attn-labs/focusship/internal/domain"
	"github.com/attn-labs/focusship/internal/ports"
	"github.com/attn-labs/focusship/internal/score"
	"github.com/attn-labs/focusship/pkg/log"
)

// Tracker is an embeddable attention-tracking agent. Use New() to create an
// instance, then Start() to begin tracking.
type Tracker struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	agent     *app.Agent
	scorer    *safeScorer
	source    ports.FrameSource
	sender    ports.SampleSender
	stateRepo ports.StateRepository
	logger    log.Logger

	plugins []Plugin

	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	pluginStop *sync.Once
}

// New creates a new Tracker with the given configuration.
// The instance is created in StateStopped; call Start() to begin tracking.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Tracker, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	o := defaultOptions(httpClient)
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	var emitter eventEmitterWrapper
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}

	lifecycle := app.NewLifecycle(logger, &emitter)

	source := fs.NewFeedReader(cfg.FeedPath, logger)
	stateRepo := fs.NewStateFileRepository(cfg.StateDir)
	client := httpAdapter.NewClient(o.httpClient, logger)
	scorer := &safeScorer{inner: score.New(scoreConfig(cfg))}

	agentCfg := app.AgentConfig{
		PollInterval:  cfg.PollInterval,
		SendInterval:  cfg.SendInterval,
		HardInterval:  cfg.HardInterval,
		MaxBatchSize:  cfg.MaxBatchSize,
		DrainAttempts: cfg.DrainAttempts,
		Once:          cfg.Once,
		DeviceID:      cfg.DeviceID,
		Hostname:      hostname(),
		OSArch:        runtime.GOOS + "/" + runtime.GOARCH,
		AuthKey:       cfg.AuthKey,
		ServiceURL:    cfg.ServiceURL,
	}

	agent := app.NewAgent(agentCfg, source, scorer, client, client, stateRepo, logger, &emitter)

	return &Tracker{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		agent:     agent,
		scorer:    scorer,
		source:    source,
		sender:    client,
		stateRepo: stateRepo,
		logger:    logger,
		plugins:   o.plugins,
	}, nil
}

// Start begins attention tracking in the background.
// Returns immediately after starting the tracking goroutine.
// Returns an error if already running or if startup fails.
// The provided context is used for the lifetime of the tracking operation.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	if err := t.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.ctx = runCtx
	t.cancel = cancel
	t.pluginStop = &sync.Once{}
	t.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		FeedPath:    t.config.FeedPath,
		StateDir:    t.config.StateDir,
		DeviceID:    t.config.DeviceID,
		ServiceURL:  t.config.ServiceURL,
		AuthKey:     t.config.AuthKey,
		Logger:      t.logger,
		Config:      t.config,
		Reconfigure: t.Reconfigure,
	}
	for _, p := range t.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			t.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			_ = t.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		t.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	t.lifecycle.AddWorker()
	go func() {
		defer t.lifecycle.WorkerDone()

		if err := t.lifecycle.TransitionTo(app.StateRunning, "agent starting"); err != nil {
			t.logger.Error("failed to transition to running", log.Err(err))
			return
		}

		err := t.agent.Run(runCtx)
		if err != nil && err != context.Canceled {
			t.logger.Error("agent error", log.Err(err))
			_ = t.lifecycle.TransitionTo(app.StateCrashed, err.Error())
			return
		}

		// A nil return means the agent finished on its own (Once mode).
		// Complete the shutdown here so Status() observers see Stopped;
		// a concurrent Stop() has already moved past Running and owns
		// the transition instead.
		if err == nil && t.lifecycle.State() == app.StateRunning {
			if terr := t.lifecycle.TransitionTo(app.StateStopping, "run complete"); terr == nil {
				t.shutdownPlugins()
				_ = t.lifecycle.TransitionTo(app.StateStopped, "run complete")
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the tracker.
// Pending samples are drained and the session is ended on the backend.
// Waits up to 30 seconds before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (t *Tracker) Stop() error {
	t.mu.Lock()

	if !t.lifecycle.CanStop() {
		t.mu.Unlock()
		return domain.ErrNotRunning
	}

	if err := t.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		t.mu.Unlock()
		return err
	}

	if t.cancel != nil {
		t.cancel()
	}

	t.mu.Unlock()

	err := t.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	t.shutdownPlugins()

	if err != nil {
		_ = t.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = t.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// shutdownPlugins shuts down plugins in reverse order, at most once per
// Start/Stop cycle. Both Stop() and the once-mode self-stop path call it.
func (t *Tracker) shutdownPlugins() {
	t.mu.RLock()
	once := t.pluginStop
	t.mu.RUnlock()
	if once == nil {
		return
	}
	once.Do(func() {
		ctx := context.Background()
		for i := len(t.plugins) - 1; i >= 0; i-- {
			p := t.plugins[i]
			if err := p.Shutdown(ctx); err != nil {
				t.logger.Error("plugin shutdown failed",
					log.String("plugin", p.Name()),
					log.Err(err))
			} else {
				t.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
			}
		}
	})
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (t *Tracker) Status() State {
	return convertState(t.lifecycle.State())
}

// Reconfigure applies runtime-safe changes from a new configuration while
// the tracker is running. Only the scoring thresholds take effect; feed
// location, intervals, and backend settings require a restart.
// Safe to call concurrently from any goroutine.
func (t *Tracker) Reconfigure(cfg Config) error {
	cfg.SetDefaults()
	if cfg.BlinkThreshold <= 0 || cfg.BlinkThreshold >= 1 {
		return domain.ErrInvalidConfig
	}

	t.scorer.SetConfig(scoreConfig(cfg))
	t.logger.Info("scoring thresholds updated",
		log.Float64("blink_threshold", cfg.BlinkThreshold),
		log.Float64("gaze_deadzone", cfg.GazeDeadzone),
	)
	return nil
}

func scoreConfig(cfg Config) score.Config {
	return score.Config{
		BlinkThreshold: cfg.BlinkThreshold,
		GazeDeadzone:   cfg.GazeDeadzone,
		MaxYawDeg:      cfg.MaxYawDeg,
		MaxPitchDeg:    cfg.MaxPitchDeg,
		BlinkWindow:    cfg.BlinkWindow,
	}
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// safeScorer guards the scorer with a mutex so a runtime reconfigure from a
// plugin goroutine cannot race the tracking loop.
type safeScorer struct {
	mu    sync.Mutex
	inner *score.Scorer
}

func (s *safeScorer) Score(frame domain.LandmarkFrame) (domain.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Score(frame)
}

func (s *safeScorer) SetConfig(cfg score.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.SetConfig(cfg)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnSendSuccess(sampleCount int, duration time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{
		SampleCount: sampleCount,
		Duration:    duration,
	})
}

func (e *eventEmitterWrapper) OnSendError(err error, sampleCount int, retryable bool) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{
		Error:       err,
		SampleCount: sampleCount,
		Retryable:   retryable,
	})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
