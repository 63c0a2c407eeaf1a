package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Meshtastic.Port != "/dev/ttyUSB0" {
		t.Errorf("Meshtastic.Port = %q, want %q", cfg.Meshtastic.Port, "/dev/ttyUSB0")
	}
	if cfg.Meshtastic.ChannelIndex != 5 {
		t.Errorf("Meshtastic.ChannelIndex = %d, want 5", cfg.Meshtastic.ChannelIndex)
	}
	if len(cfg.MQTT.Topics) != 2 {
		t.Errorf("len(MQTT.Topics) = %d, want 2", len(cfg.MQTT.Topics))
	}
}

func TestLoad_ValidFile(t *testing.T) {
	content := `
bridge:
  id: "bridge-test"
mqtt:
  broker:
    host: "mqtt.local"
    port: 8883
    tls: true
    client_id: "bridge-test"
  qos: 1
  topics:
    - "zigbee2mqtt/hallway_motion"
meshtastic:
  port: "/dev/ttyACM0"
  channel_index: 2
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Bridge.ID != "bridge-test" {
		t.Errorf("Bridge.ID = %q, want %q", cfg.Bridge.ID, "bridge-test")
	}
	if cfg.MQTT.Broker.Host != "mqtt.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.local")
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true")
	}
	if cfg.Meshtastic.ChannelIndex != 2 {
		t.Errorf("Meshtastic.ChannelIndex = %d, want 2", cfg.Meshtastic.ChannelIndex)
	}
	if want := []string{"zigbee2mqtt/hallway_motion"}; !reflect.DeepEqual(cfg.MQTT.Topics, want) {
		t.Errorf("MQTT.Topics = %v, want %v", cfg.MQTT.Topics, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MQTT_BROKER", "broker.example.com")
	t.Setenv("MQTT_PORT", "1884")
	t.Setenv("MQTT_USERNAME", "bridge")
	t.Setenv("MQTT_PASSWORD", "secret")
	t.Setenv("MQTT_TOPICS", "zigbee2mqtt/front_door, zigbee2mqtt/garden_motion")
	t.Setenv("MESHTASTIC_PORT", "/dev/ttyACM1")
	t.Setenv("CHANNEL_INDEX", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.example.com")
	}
	if cfg.MQTT.Broker.Port != 1884 {
		t.Errorf("MQTT.Broker.Port = %d, want 1884", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "bridge" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "bridge")
	}
	if cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "secret")
	}
	want := []string{"zigbee2mqtt/front_door", "zigbee2mqtt/garden_motion"}
	if !reflect.DeepEqual(cfg.MQTT.Topics, want) {
		t.Errorf("MQTT.Topics = %v, want %v", cfg.MQTT.Topics, want)
	}
	if cfg.Meshtastic.Port != "/dev/ttyACM1" {
		t.Errorf("Meshtastic.Port = %q, want %q", cfg.Meshtastic.Port, "/dev/ttyACM1")
	}
	if cfg.Meshtastic.ChannelIndex != 3 {
		t.Errorf("Meshtastic.ChannelIndex = %d, want 3", cfg.Meshtastic.ChannelIndex)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestApplyEnvOverrides_InvalidNumbers(t *testing.T) {
	t.Setenv("MQTT_PORT", "not-a-port")
	t.Setenv("CHANNEL_INDEX", "five")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883 for unparseable value", cfg.MQTT.Broker.Port)
	}
	if cfg.Meshtastic.ChannelIndex != 5 {
		t.Errorf("Meshtastic.ChannelIndex = %d, want default 5 for unparseable value", cfg.Meshtastic.ChannelIndex)
	}
}

func TestSplitTopics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single topic",
			input: "zigbee2mqtt/motion_outdoor",
			want:  []string{"zigbee2mqtt/motion_outdoor"},
		},
		{
			name:  "multiple with whitespace",
			input: " zigbee2mqtt/a , zigbee2mqtt/b ",
			want:  []string{"zigbee2mqtt/a", "zigbee2mqtt/b"},
		},
		{
			name:  "trailing comma",
			input: "zigbee2mqtt/a,",
			want:  []string{"zigbee2mqtt/a"},
		},
		{
			name:  "empty string",
			input: "",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTopics(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTopics(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing bridge id",
			mutate:  func(c *Config) { c.Bridge.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "invalid broker port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "no topics",
			mutate:  func(c *Config) { c.MQTT.Topics = nil },
			wantErr: true,
		},
		{
			name:    "missing serial port",
			mutate:  func(c *Config) { c.Meshtastic.Port = "" },
			wantErr: true,
		},
		{
			name:    "channel index too high",
			mutate:  func(c *Config) { c.Meshtastic.ChannelIndex = 8 },
			wantErr: true,
		},
		{
			name:    "channel index negative",
			mutate:  func(c *Config) { c.Meshtastic.ChannelIndex = -1 },
			wantErr: true,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name: "influxdb enabled with url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetSendTimeout(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.GetSendTimeout().Seconds(); got != 30 {
		t.Errorf("GetSendTimeout() = %v, want 30", got)
	}
}
