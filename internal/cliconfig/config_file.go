package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	FeedPath       string  `toml:"feed_path"`
	StateDir       string  `toml:"state_dir"`
	DeviceID       string  `toml:"device_id"`
	ServiceURL     string  `toml:"service_url"`
	AuthKey        string  `toml:"auth_key"`
	PollInterval   string  `toml:"poll_interval"`
	SendInterval   string  `toml:"send_interval"`
	HardInterval   string  `toml:"hard_interval"`
	HTTPTimeout    string  `toml:"http_timeout"`
	MaxBatchSize   int     `toml:"max_batch_size"`
	DrainAttempts  int     `toml:"drain_attempts"`
	BlinkThreshold float64 `toml:"blink_threshold"`
	GazeDeadzone   float64 `toml:"gaze_deadzone"`
	MaxYawDeg      float64 `toml:"max_yaw_deg"`
	MaxPitchDeg    float64 `toml:"max_pitch_deg"`
	BlinkWindow    string  `toml:"blink_window"`
	Once           *bool   `toml:"once"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.focusship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".focusship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("feed", fc.FeedPath, &cfg.FeedPath)
	s.setString("state-dir", fc.StateDir, &cfg.StateDir)
	s.setString("device-id", fc.DeviceID, &cfg.DeviceID)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-interval", fc.SendInterval, &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setDuration("hard-interval", fc.HardInterval, &cfg.HardInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("blink-window", fc.BlinkWindow, &cfg.BlinkWindow); err != nil {
		return err
	}

	s.setInt("max-batch-size", fc.MaxBatchSize, &cfg.MaxBatchSize)
	s.setInt("drain-attempts", fc.DrainAttempts, &cfg.DrainAttempts)

	s.setFloat("blink-threshold", fc.BlinkThreshold, &cfg.BlinkThreshold)
	s.setFloat("gaze-deadzone", fc.GazeDeadzone, &cfg.GazeDeadzone)
	s.setFloat("max-yaw", fc.MaxYawDeg, &cfg.MaxYawDeg)
	s.setFloat("max-pitch", fc.MaxPitchDeg, &cfg.MaxPitchDeg)

	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// stateDirFor derives the default state directory from the feed location.
func stateDirFor(feedPath string) string {
	return filepath.Dir(feedPath)
}
