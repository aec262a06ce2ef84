package ports

import (
	"context"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
)

// SampleSender transmits sample batches to the backend.
// Implementations handle serialization, HTTP communication, and
// authentication.
type SampleSender interface {
	// Send transmits a batch of samples to the backend.
	// Returns nil on success, error on failure. The caller owns retry
	// policy; implementations should not retry internally.
	Send(ctx context.Context, batch *domain.Batch, metadata SendMetadata) error
}

// SessionClient opens and closes tracking sessions on the backend.
type SessionClient interface {
	// CreateSession registers a new session and returns its server-assigned ID.
	CreateSession(ctx context.Context, startedAt time.Time, metadata SendMetadata) (string, error)

	// EndSession marks the session as ended at the given time.
	EndSession(ctx context.Context, sessionID string, endedAt time.Time, metadata SendMetadata) error
}

// SendMetadata provides context for backend operations.
// This information is included in HTTP headers for server-side tracking.
type SendMetadata struct {
	// SessionID is the session the batch belongs to.
	SessionID string

	// DeviceID identifies the tracked device or browser install.
	DeviceID string

	// Hostname is the agent's hostname.
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64").
	OSArch string

	// AuthKey is the API authentication key.
	AuthKey string

	// ServiceURL is the base URL of the backend.
	ServiceURL string
}
