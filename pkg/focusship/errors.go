package focusship

import "github.com/attn-labs/focusship/internal/domain"

// Error sentinels returned by the public API, re-exported so embedders can
// check them with errors.Is without importing internal packages.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)
