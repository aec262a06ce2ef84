// Package focusship provides an embeddable attention-tracking agent.
//
// The tracker consumes facial-landmark frames from an NDJSON feed written by
// an external inference process, scores each frame for attention, and uploads
// the resulting samples to a focusship backend in batches. It can be used
// through the standalone CLI or embedded as a library in other Go programs.
//
// # Basic Usage
//
// To embed the tracker in your application:
//
//	cfg := focusship.Config{
//	    FeedPath: "/path/to/landmarks.ndjson",
//	    DeviceID: "workstation-1",
//	    AuthKey:  "your-api-key",
//	}
//
//	tracker, err := focusship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := tracker.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := tracker.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Configuration
//
// Create a [Config] with at minimum FeedPath and DeviceID. All other fields
// have sensible defaults set via [Config.SetDefaults].
//
// # Event Handling
//
// To receive notifications about tracker operations, implement [EventHandler]
// and pass it via [WithEventHandler]:
//
//	handler := &myEventHandler{}
//	tracker, err := focusship.New(cfg, focusship.WithEventHandler(handler))
//
// Events are called synchronously from the tracking goroutine. Implementations
// should return quickly to avoid blocking uploads.
//
// # Dependency Injection
//
// For testing, you can inject custom implementations of external dependencies:
//
//	tracker, err := focusship.New(cfg,
//	    focusship.WithHTTPClient(mockClient),
//	    focusship.WithLogger(customLogger),
//	)
//
// # Lifecycle States
//
// A Tracker can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Tracker.Status] to
// query the current state.
//
// # Plugins
//
// The tracker supports optional plugins for extended functionality:
//
//	import "github.com/attn-labs/focusship/plugins/configwatcher"
//
//	tracker, err := focusship.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	)
package focusship
