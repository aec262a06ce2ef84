// Package focusship tracks attention from a facial-landmark feed and ships
// scored samples to a collection service.
//
// This root package re-exports the library surface from pkg/focusship so
// embedders can depend on the module path directly:
//
//	cfg := focusship.Config{
//	    FeedPath: "/var/lib/focusship/frames.ndjson",
//	    DeviceID: "desk-cam-1",
//	    AuthKey:  "your-api-key",
//	}
//	tracker, err := focusship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := tracker.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer tracker.Stop()
//
// See pkg/focusship for the full API, including event handlers and plugins.
package focusship

import (
	"github.com/attn-labs/focusship/pkg/focusship"
)

// Config holds the configuration for the attention tracking agent.
type Config = focusship.Config

// Tracker is the attention tracking agent. Use New to create one.
type Tracker = focusship.Tracker

// Option configures a Tracker at construction time.
type Option = focusship.Option

// New creates a Tracker with the given configuration and options.
func New(cfg Config, opts ...Option) (*Tracker, error) {
	return focusship.New(cfg, opts...)
}

// WithLogger injects a custom logger.
var WithLogger = focusship.WithLogger

// WithEventHandler registers a lifecycle and send event handler.
var WithEventHandler = focusship.WithEventHandler

// WithHTTPClient injects a custom HTTP client, mainly for testing.
var WithHTTPClient = focusship.WithHTTPClient

// WithPlugin registers a plugin started on Start and stopped on Stop.
var WithPlugin = focusship.WithPlugin

// DefaultServiceURL is the default collection endpoint.
const DefaultServiceURL = focusship.DefaultServiceURL
