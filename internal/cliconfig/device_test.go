package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestEnsureDeviceID_Generates(t *testing.T) {
	cfg := &Config{StateDir: t.TempDir()}
	if err := EnsureDeviceID(cfg); err != nil {
		t.Fatalf("EnsureDeviceID() error = %v", err)
	}
	if _, err := uuid.Parse(cfg.DeviceID); err != nil {
		t.Errorf("DeviceID %q is not a UUID: %v", cfg.DeviceID, err)
	}

	// A second call on the same state dir reuses the persisted ID.
	other := &Config{StateDir: cfg.StateDir}
	if err := EnsureDeviceID(other); err != nil {
		t.Fatalf("EnsureDeviceID() second call error = %v", err)
	}
	if other.DeviceID != cfg.DeviceID {
		t.Errorf("DeviceID not stable: %q vs %q", other.DeviceID, cfg.DeviceID)
	}
}

func TestEnsureDeviceID_ExplicitWins(t *testing.T) {
	cfg := &Config{DeviceID: "workstation-7", StateDir: t.TempDir()}
	if err := EnsureDeviceID(cfg); err != nil {
		t.Fatalf("EnsureDeviceID() error = %v", err)
	}
	if cfg.DeviceID != "workstation-7" {
		t.Errorf("DeviceID = %q, explicit value should be kept", cfg.DeviceID)
	}
}

func TestEnsureDeviceID_RegeneratesCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, deviceIDFileName), []byte("not-a-uuid"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{StateDir: dir}
	if err := EnsureDeviceID(cfg); err != nil {
		t.Fatalf("EnsureDeviceID() error = %v", err)
	}
	if _, err := uuid.Parse(cfg.DeviceID); err != nil {
		t.Errorf("DeviceID %q is not a UUID: %v", cfg.DeviceID, err)
	}
}

func TestEnsureDeviceID_NoStateDir(t *testing.T) {
	if err := EnsureDeviceID(&Config{}); err == nil {
		t.Error("EnsureDeviceID() with no state dir returned nil error")
	}
}
