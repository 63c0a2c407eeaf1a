package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Meshtastic Zigbee bridge.
// Values are loaded from YAML (optional) and can be overridden by environment
// variables using the names the original deployment contract defines
// (MQTT_BROKER, MQTT_TOPICS, MESHTASTIC_PORT, ...).
type Config struct {
	Bridge     BridgeConfig     `yaml:"bridge"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Meshtastic MeshtasticConfig `yaml:"meshtastic"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BridgeConfig contains bridge identity settings.
type BridgeConfig struct {
	ID string `yaml:"id"`
}

// MQTTConfig contains MQTT broker connection settings and the topic list
// the bridge subscribes to.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
	Topics    []string            `yaml:"topics"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// MeshtasticConfig contains settings for the mesh radio attached over serial.
type MeshtasticConfig struct {
	// Port is the serial device the radio is attached to.
	Port string `yaml:"port"`

	// ChannelIndex is the logical channel notifications are sent on (0-7).
	ChannelIndex int `yaml:"channel_index"`

	// CLI is the path to the meshtastic executable. Default: "meshtastic".
	CLI string `yaml:"cli"`

	// BaudRate is used for the startup serial availability probe.
	BaudRate int `yaml:"baud_rate"`

	// SendTimeout is the per-send CLI timeout in seconds.
	SendTimeout int `yaml:"send_timeout"`
}

// InfluxDBConfig contains optional telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration and applies environment variable overrides.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// The bridge is normally configured purely through environment variables;
// the YAML file is optional. Pass "" to skip the file entirely.
//
// Parameters:
//   - path: Path to the YAML configuration file ("" means defaults + env only)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config matching the original deployment defaults.
func defaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			ID: "meshbridge",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "meshbridge",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			Topics: []string{
				"zigbee2mqtt/motion_outdoor",
				"zigbee2mqtt/door_outdoor",
			},
		},
		Meshtastic: MeshtasticConfig{
			Port:         "/dev/ttyUSB0",
			ChannelIndex: 5,
			CLI:          "meshtastic",
			BaudRate:     115200,
			SendTimeout:  30,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:       false,
			BatchSize:     20,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The variable names are the bridge's original deployment contract.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("MQTT_TOPICS"); v != "" {
		cfg.MQTT.Topics = SplitTopics(v)
	}
	if v := os.Getenv("MESHTASTIC_PORT"); v != "" {
		cfg.Meshtastic.Port = v
	}
	if v := os.Getenv("CHANNEL_INDEX"); v != "" {
		if idx, err := strconv.Atoi(v); err == nil {
			cfg.Meshtastic.ChannelIndex = idx
		}
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// SplitTopics parses a comma-separated topic list, trimming whitespace and
// dropping empty entries.
func SplitTopics(s string) []string {
	parts := strings.Split(s, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			topics = append(topics, t)
		}
	}
	return topics
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Bridge.ID == "" {
		errs = append(errs, "bridge.id is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if len(c.MQTT.Topics) == 0 {
		errs = append(errs, "mqtt.topics must list at least one topic")
	}

	if c.Meshtastic.Port == "" {
		errs = append(errs, "meshtastic.port is required")
	}
	// Meshtastic firmware exposes 8 channel slots.
	if c.Meshtastic.ChannelIndex < 0 || c.Meshtastic.ChannelIndex > 7 {
		errs = append(errs, "meshtastic.channel_index must be between 0 and 7")
	}
	if c.Meshtastic.SendTimeout <= 0 {
		errs = append(errs, "meshtastic.send_timeout must be positive")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetSendTimeout returns the radio send timeout as a Duration.
func (c *Config) GetSendTimeout() time.Duration {
	return time.Duration(c.Meshtastic.SendTimeout) * time.Second
}
