package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const deviceIDFileName = "device-id"

// EnsureDeviceID fills in cfg.DeviceID if it is not already set. The ID is
// read from the state directory; on first run a fresh UUID is generated and
// persisted so the device keeps its identity across restarts.
func EnsureDeviceID(cfg *Config) error {
	if cfg.DeviceID != "" {
		return nil
	}
	if cfg.StateDir == "" {
		return fmt.Errorf("device-id is required (or state-dir)")
	}

	path := filepath.Join(cfg.StateDir, deviceIDFileName)
	if b, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(b))
		if _, perr := uuid.Parse(id); perr == nil {
			cfg.DeviceID = id
			return nil
		}
		// Corrupt file; fall through and regenerate.
	}

	id := uuid.NewString()
	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("persist device id: %w", err)
	}
	cfg.DeviceID = id
	return nil
}
