package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("MESHBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingCLI verifies run fails before any broker connection when
// the meshtastic CLI is not installed.
func TestRun_MissingCLI(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
bridge:
  id: test-bridge

mqtt:
  broker:
    host: "127.0.0.1"
    port: 1883
    client_id: "test-client"
  qos: 0
  topics:
    - "zigbee2mqtt/motion_outdoor"

meshtastic:
  port: "/dev/ttyUSB0"
  channel_index: 5
  cli: "` + filepath.Join(tmpDir, "no-such-cli") + `"
  send_timeout: 30

influxdb:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("MESHBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail when the meshtastic CLI is missing")
	}
}

// TestGetConfigPath_Default verifies config is env-only when no env var is
// set and the default file does not exist.
func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("MESHBRIDGE_CONFIG", "")

	if path := getConfigPath(); path != "" {
		t.Errorf("getConfigPath() = %q, want empty", path)
	}
}

// TestGetConfigPath_EnvOverride verifies the environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv("MESHBRIDGE_CONFIG", expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
