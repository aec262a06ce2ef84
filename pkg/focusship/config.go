package focusship

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/attn-labs/focusship/internal/domain"
)

// DefaultServiceURL is the default backend endpoint for uploads.
const DefaultServiceURL = "http://localhost:8080"

// Config holds the configuration for an embedded tracking agent.
// Use SetDefaults to fill unset fields, then Validate before New.
type Config struct {
	// FeedPath is the NDJSON landmark feed written by the inference
	// process. Required.
	FeedPath string

	// StateDir holds the agent state file. Defaults to the feed's
	// directory.
	StateDir string

	// DeviceID identifies this device to the backend. Required.
	DeviceID string

	// ServiceURL is the backend base URL.
	ServiceURL string

	// AuthKey is the bearer token for backend requests.
	AuthKey string

	PollInterval time.Duration
	SendInterval time.Duration
	HardInterval time.Duration
	HTTPTimeout  time.Duration

	MaxBatchSize  int
	DrainAttempts int

	// Scoring thresholds.
	BlinkThreshold float64
	GazeDeadzone   float64
	MaxYawDeg      float64
	MaxPitchDeg    float64
	BlinkWindow    time.Duration

	// Once processes the frames available now and exits instead of
	// tailing the feed.
	Once bool
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.StateDir == "" && c.FeedPath != "" {
		c.StateDir = filepath.Dir(c.FeedPath)
	}
	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.SendInterval <= 0 {
		c.SendInterval = 5 * time.Second
	}
	if c.HardInterval <= 0 {
		c.HardInterval = 15 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 50
	}
	if c.DrainAttempts <= 0 {
		c.DrainAttempts = 5
	}
	if c.BlinkThreshold <= 0 {
		c.BlinkThreshold = 0.21
	}
	if c.GazeDeadzone <= 0 {
		c.GazeDeadzone = 0.15
	}
	if c.MaxYawDeg <= 0 {
		c.MaxYawDeg = 20
	}
	if c.MaxPitchDeg <= 0 {
		c.MaxPitchDeg = 15
	}
	if c.BlinkWindow <= 0 {
		c.BlinkWindow = time.Minute
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.FeedPath == "" {
		return fmt.Errorf("%w: FeedPath is required", domain.ErrInvalidConfig)
	}
	if c.DeviceID == "" {
		return fmt.Errorf("%w: DeviceID is required", domain.ErrInvalidConfig)
	}
	if c.SendInterval > c.HardInterval {
		return fmt.Errorf("%w: SendInterval must not exceed HardInterval", domain.ErrInvalidConfig)
	}
	if c.BlinkThreshold <= 0 || c.BlinkThreshold >= 1 {
		return fmt.Errorf("%w: BlinkThreshold must be in (0,1)", domain.ErrInvalidConfig)
	}
	return nil
}
