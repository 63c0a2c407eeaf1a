// Package config loads and validates bridge configuration.
//
// Configuration is layered: hardcoded defaults, then an optional YAML file,
// then environment variable overrides. The environment variable names
// (MQTT_BROKER, MQTT_PORT, MQTT_TOPICS, MESHTASTIC_PORT, CHANNEL_INDEX,
// LOG_LEVEL) are the bridge's stable deployment contract; the YAML file is a
// convenience for development setups.
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("MESHBRIDGE_CONFIG"))
//	if err != nil {
//	    return err
//	}
package config
