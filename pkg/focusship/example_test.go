package focusship_test

import (
	"fmt"
	"net/http"

	"github.com/attn-labs/focusship/pkg/focusship"
)

// ExampleNew demonstrates how to embed the tracker in your application.
func ExampleNew() {
	cfg := focusship.Config{
		FeedPath:   "/path/to/landmarks.ndjson",
		DeviceID:   "workstation-1",
		AuthKey:    "your-api-key",
		ServiceURL: "https://focus.example.com",
	}

	tracker, err := focusship.New(cfg)
	if err != nil {
		fmt.Printf("failed to create tracker: %v\n", err)
		return
	}

	// Initial state is Stopped; call Start(ctx) to begin tracking and
	// Stop() to drain pending samples and end the session.
	fmt.Printf("Initial state: %s\n", tracker.Status())

	// Output: Initial state: Stopped
}

// Example_withEventHandler demonstrates how to receive tracker events.
func Example_withEventHandler() {
	handler := &myEventHandler{}

	cfg := focusship.Config{
		FeedPath: "/path/to/landmarks.ndjson",
		DeviceID: "workstation-1",
	}

	tracker, err := focusship.New(cfg, focusship.WithEventHandler(handler))
	if err != nil {
		fmt.Printf("failed to create tracker: %v\n", err)
		return
	}

	_ = tracker // Use tracker instance...
}

// myEventHandler implements focusship.EventHandler for event notifications.
type myEventHandler struct {
	focusship.BaseEventHandler // Embed for no-op defaults
}

func (h *myEventHandler) OnSendSuccess(event focusship.SendSuccessEvent) {
	fmt.Printf("Sent %d samples in %v\n", event.SampleCount, event.Duration)
}

func (h *myEventHandler) OnSendError(event focusship.SendErrorEvent) {
	fmt.Printf("Send error: %v (samples: %d, retryable: %v)\n",
		event.Error, event.SampleCount, event.Retryable)
}

// Example_withMockHTTPClient demonstrates dependency injection for testing.
func Example_withMockHTTPClient() {
	mockClient := &mockHTTPClient{}

	cfg := focusship.Config{
		FeedPath: "/path/to/landmarks.ndjson",
		DeviceID: "test-device",
	}

	tracker, err := focusship.New(cfg, focusship.WithHTTPClient(mockClient))
	if err != nil {
		fmt.Printf("failed to create tracker: %v\n", err)
		return
	}

	_ = tracker // Use in tests...
}

// mockHTTPClient implements focusship.HTTPClient for testing.
type mockHTTPClient struct {
	requests []*http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       http.NoBody,
	}, nil
}

// Example_withCustomLogger demonstrates injecting a custom logger.
func Example_withCustomLogger() {
	logger := &customLogger{}

	cfg := focusship.Config{
		FeedPath: "/path/to/landmarks.ndjson",
		DeviceID: "workstation-1",
	}

	tracker, err := focusship.New(cfg, focusship.WithLogger(logger))
	if err != nil {
		fmt.Printf("failed to create tracker: %v\n", err)
		return
	}

	_ = tracker // Use tracker instance...
}

// customLogger implements focusship.Logger.
type customLogger struct{}

func (l *customLogger) Debug(msg string, fields ...focusship.LogField) {
	fmt.Printf("[DEBUG] %s\n", msg)
}

func (l *customLogger) Info(msg string, fields ...focusship.LogField) {
	fmt.Printf("[INFO] %s\n", msg)
}

func (l *customLogger) Warn(msg string, fields ...focusship.LogField) {
	fmt.Printf("[WARN] %s\n", msg)
}

func (l *customLogger) Error(msg string, fields ...focusship.LogField) {
	fmt.Printf("[ERROR] %s\n", msg)
}
