package focusship

import (
	"context"

	"github.com/attn-labs/focusship/pkg/log"
)

// Plugin extends a Tracker with auxiliary behavior. Plugins are initialized
// in registration order when the tracker starts and shut down in reverse
// order when it stops.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is the tracker configuration exposed to plugins.
type PluginConfig struct {
	FeedPath   string
	StateDir   string
	DeviceID   string
	ServiceURL string
	AuthKey    string
	Logger     log.Logger

	// Config is the tracker's effective configuration at start, including
	// the active scoring thresholds. Plugins that reconfigure the tracker
	// should start from this and change only what they mean to change.
	Config Config

	// Reconfigure applies a changed tracker configuration at runtime.
	// Only runtime-safe fields (intervals, scoring thresholds) take
	// effect; nil when the tracker does not support reconfiguration.
	Reconfigure func(Config) error
}
