package ports

import (
	"context"
	"io"

	"github.com/attn-labs/focusship/internal/domain"
)

// FrameSource provides access to landmark frames from the inference feed.
// Implementations tail the NDJSON feed file written by the external
// face-landmark process.
type FrameSource interface {
	// Open prepares the source starting from the given state.
	// If state is nil or empty, starts from the beginning of the feed.
	Open(ctx context.Context, state *domain.State) error

	// Next returns the next frame and the byte length of its feed line.
	// Returns io.EOF when no more frames are available (caller should
	// poll and retry). Returns other errors for unrecoverable issues.
	Next(ctx context.Context) (domain.LandmarkFrame, int, error)

	// CurrentPosition returns the current reading position for state
	// persistence: the feed path and the byte offset of the next line.
	CurrentPosition() (string, int64)

	// Close releases all resources held by the source.
	Close() error
}

// ErrNoMoreFrames indicates that there are no more frames to read.
// The caller should poll and retry after a delay.
var ErrNoMoreFrames = io.EOF
