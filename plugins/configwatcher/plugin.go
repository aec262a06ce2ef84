// Package configwatcher provides config file monitoring for focusship.
// When enabled, it watches the tracker's TOML config file and applies
// runtime-safe changes (scoring thresholds) without a restart.
package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/attn-labs/focusship/pkg/focusship"
	"github.com/attn-labs/focusship/pkg/log"
)

// Plugin implements config watching functionality. It monitors the tracker's
// config file and reconfigures the running tracker when it changes.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration

	// Runtime state
	base        focusship.Config
	reconfigure func(focusship.Config) error
	logger      log.Logger
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	debounce    *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML config file to watch. Required.
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// reloading, so editors that write in multiple steps trigger one
	// reload. Default: 100 milliseconds.
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config watching the given path with defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:          path,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the file watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg focusship.PluginConfig) error {
	p.mu.Lock()
	// Start from the tracker's effective config so thresholds absent from
	// the watched file keep their active values.
	p.base = cfg.Config
	p.reconfigure = cfg.Reconfigure
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.path == "" || p.reconfigure == nil {
		p.logger.Warn("config watcher disabled: no config path or tracker does not support reconfiguration")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop watches the config file's directory for changes. Watching the
// directory rather than the file survives the rename dance editors do on
// save.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("config watcher: failed to watch directory", log.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.reload)
}

// tuningFile is the subset of the agent config file the watcher applies at
// runtime. Pointer fields distinguish "not in the file" from a zero value
// so only fields the file sets override the active config.
type tuningFile struct {
	BlinkThreshold *float64 `toml:"blink_threshold"`
	GazeDeadzone   *float64 `toml:"gaze_deadzone"`
	MaxYawDeg      *float64 `toml:"max_yaw_deg"`
	MaxPitchDeg    *float64 `toml:"max_pitch_deg"`
	BlinkWindow    *string  `toml:"blink_window"`
}

// reload parses the config file and pushes the scoring thresholds to the
// tracker.
func (p *Plugin) reload() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Error("config watcher: read failed", log.Err(err))
		return
	}

	var tf tuningFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		p.logger.Error("config watcher: parse failed", log.Err(err))
		return
	}

	p.mu.Lock()
	cfg := p.base
	reconfigure := p.reconfigure
	p.mu.Unlock()

	if tf.BlinkThreshold != nil {
		cfg.BlinkThreshold = *tf.BlinkThreshold
	}
	if tf.GazeDeadzone != nil {
		cfg.GazeDeadzone = *tf.GazeDeadzone
	}
	if tf.MaxYawDeg != nil {
		cfg.MaxYawDeg = *tf.MaxYawDeg
	}
	if tf.MaxPitchDeg != nil {
		cfg.MaxPitchDeg = *tf.MaxPitchDeg
	}
	if tf.BlinkWindow != nil {
		if d, err := time.ParseDuration(*tf.BlinkWindow); err == nil {
			cfg.BlinkWindow = d
		} else {
			p.logger.Warn("config watcher: invalid blink_window ignored", log.Err(err))
		}
	}

	if err := reconfigure(cfg); err != nil {
		p.logger.Error("config watcher: reconfigure rejected", log.Err(err))
		return
	}
	p.logger.Info("config watcher: applied configuration change")

	p.mu.Lock()
	p.base = cfg
	p.mu.Unlock()
}

// Ensure Plugin implements focusship.Plugin.
var _ focusship.Plugin = (*Plugin)(nil)
