// Package cliconfig holds the focusship agent's CLI configuration: defaults,
// validation, and the file/env/flag precedence rules.
package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultServiceURL is the default backend endpoint for shipping samples.
const DefaultServiceURL = "http://localhost:8080"

// Config holds CLI configuration for the focusship agent.
type Config struct {
	FeedPath string
	StateDir string
	DeviceID string

	ServiceURL string
	AuthKey    string

	PollInterval time.Duration
	SendInterval time.Duration
	HardInterval time.Duration
	HTTPTimeout  time.Duration

	MaxBatchSize  int
	DrainAttempts int

	// Scoring thresholds, forwarded to the scorer.
	BlinkThreshold float64
	GazeDeadzone   float64
	MaxYawDeg      float64
	MaxPitchDeg    float64
	BlinkWindow    time.Duration

	Once bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ServiceURL:     DefaultServiceURL,
		PollInterval:   500 * time.Millisecond,
		SendInterval:   5 * time.Second,
		HardInterval:   15 * time.Second,
		HTTPTimeout:    15 * time.Second,
		MaxBatchSize:   50,
		DrainAttempts:  5,
		BlinkThreshold: 0.21,
		GazeDeadzone:   0.15,
		MaxYawDeg:      20,
		MaxPitchDeg:    15,
		BlinkWindow:    time.Minute,
		AuthKey:        os.Getenv("FOCUSSHIP_AUTH_KEY"),
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.FeedPath == "" {
		return fmt.Errorf("feed is required")
	}

	if c.StateDir == "" {
		c.StateDir = stateDirFor(c.FeedPath)
	}

	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.SendInterval <= 0 {
		return fmt.Errorf("send interval must be positive")
	}
	if c.HardInterval < c.SendInterval {
		return fmt.Errorf("hard interval must be at least the send interval")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive")
	}
	if c.BlinkThreshold <= 0 || c.BlinkThreshold >= 1 {
		return fmt.Errorf("blink threshold must be in (0,1)")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
