package cliconfig

import "os"

// Environment variable names recognized by the agent. Environment values
// override the config file but lose to explicitly set flags.
const (
	EnvFeedPath       = "FOCUSSHIP_FEED_PATH"
	EnvStateDir       = "FOCUSSHIP_STATE_DIR"
	EnvDeviceID       = "FOCUSSHIP_DEVICE_ID"
	EnvServiceURL     = "FOCUSSHIP_SERVICE_URL"
	EnvAuthKey        = "FOCUSSHIP_AUTH_KEY"
	EnvPollInterval   = "FOCUSSHIP_POLL_INTERVAL"
	EnvSendInterval   = "FOCUSSHIP_SEND_INTERVAL"
	EnvHardInterval   = "FOCUSSHIP_HARD_INTERVAL"
	EnvHTTPTimeout    = "FOCUSSHIP_HTTP_TIMEOUT"
	EnvMaxBatchSize   = "FOCUSSHIP_MAX_BATCH_SIZE"
	EnvDrainAttempts  = "FOCUSSHIP_DRAIN_ATTEMPTS"
	EnvBlinkThreshold = "FOCUSSHIP_BLINK_THRESHOLD"
	EnvGazeDeadzone   = "FOCUSSHIP_GAZE_DEADZONE"
	EnvOnce           = "FOCUSSHIP_ONCE"
)

// ApplyEnvConfig applies FOCUSSHIP_* environment variables to the Config.
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("feed", os.Getenv(EnvFeedPath), &cfg.FeedPath)
	s.setString("state-dir", os.Getenv(EnvStateDir), &cfg.StateDir)
	s.setString("device-id", os.Getenv(EnvDeviceID), &cfg.DeviceID)
	s.setString("service-url", os.Getenv(EnvServiceURL), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv(EnvAuthKey), &cfg.AuthKey)

	if err := s.setDuration("poll", os.Getenv(EnvPollInterval), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-interval", os.Getenv(EnvSendInterval), &cfg.SendInterval); err != nil {
		return err
	}
	if err := s.setDuration("hard-interval", os.Getenv(EnvHardInterval), &cfg.HardInterval); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv(EnvHTTPTimeout), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("max-batch-size", os.Getenv(EnvMaxBatchSize), &cfg.MaxBatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("drain-attempts", os.Getenv(EnvDrainAttempts), &cfg.DrainAttempts); err != nil {
		return err
	}

	if err := s.setFloatFromString("blink-threshold", os.Getenv(EnvBlinkThreshold), &cfg.BlinkThreshold); err != nil {
		return err
	}
	if err := s.setFloatFromString("gaze-deadzone", os.Getenv(EnvGazeDeadzone), &cfg.GazeDeadzone); err != nil {
		return err
	}

	s.setBoolFromString("once", os.Getenv(EnvOnce), &cfg.Once)

	return nil
}
