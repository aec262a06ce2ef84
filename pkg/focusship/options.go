package focusship

import (
	"net/http"

	"github.com/attn-labs/focusship/internal/ports"
	"github.com/attn-labs/focusship/pkg/log"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the structured logging interface from pkg/log.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Option configures optional behavior of a Tracker.
type Option func(*options)

// options holds the optional configuration for a Tracker instance.
type options struct {
	httpClient   ports.HTTPClient
	logger       log.Logger
	eventHandler EventHandler
	plugins      []Plugin
}

// defaultOptions returns options with sensible defaults.
func defaultOptions(client *http.Client) options {
	return options{
		httpClient: client,
		logger:     log.NewNoop(),
	}
}

// WithHTTPClient sets a custom HTTP client for backend communication.
// If not provided, a default client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for tracker events.
// Events are called synchronously from the tracking goroutine.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the tracker starts.
// Plugins are initialized in registration order and shut down in reverse
// order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}
