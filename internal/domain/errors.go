package domain

import "errors"

// Domain errors represent error conditions in the focusship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("focusship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("focusship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("focusship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("focusship: invalid configuration")

	// ErrSessionClosed is returned when samples are appended to an ended session.
	ErrSessionClosed = errors.New("focusship: session already ended")

	// ErrNoLandmarks is returned by the scorer for frames without a usable face.
	ErrNoLandmarks = errors.New("focusship: no usable landmarks in frame")
)
