package configwatcher

import (
	"github.com/attn-labs/focusship/pkg/focusship"
)

// WithConfigWatcher returns a focusship.Option that enables config file
// watching with the given configuration.
//
// Example:
//
//	tracker, err := focusship.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path: "/etc/focusship/agent.toml",
//	    }),
//	)
func WithConfigWatcher(cfg Config) focusship.Option {
	plugin := New(cfg)
	return focusship.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a focusship.Option that enables config
// file watching for the given path with default settings.
func WithDefaultConfigWatcher(path string) focusship.Option {
	return WithConfigWatcher(DefaultConfig(path))
}
