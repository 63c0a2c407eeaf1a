// meshbridge - Zigbee2MQTT to Meshtastic bridge
//
// This is the main entry point for the bridge. It subscribes to
// Zigbee2MQTT sensor topics, classifies payloads into short notifications
// (motion, door/tamper), and broadcasts them to a Meshtastic mesh radio
// attached over serial. Useful where the sensors live at the edge of any
// reliable network: the mesh carries the alert even when the internet
// does not.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apocas/meshtastic-zigbee/internal/bridges/zigbee"
	"github.com/apocas/meshtastic-zigbee/internal/infrastructure/config"
	"github.com/apocas/meshtastic-zigbee/internal/infrastructure/influxdb"
	"github.com/apocas/meshtastic-zigbee/internal/infrastructure/logging"
	"github.com/apocas/meshtastic-zigbee/internal/infrastructure/mqtt"
	"github.com/apocas/meshtastic-zigbee/internal/meshtastic"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting meshbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration. The bridge is normally configured purely through
	// environment variables; a YAML file is optional.
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath != "" {
		log.Info("configuration loaded", "path", configPath)
	} else {
		log.Info("configuration loaded from defaults and environment")
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Create the radio sender and verify the deployment before touching MQTT:
	// a bridge that cannot send has no business subscribing.
	sender, err := meshtastic.NewSender(meshtastic.SenderConfig{
		CLI:         cfg.Meshtastic.CLI,
		Port:        cfg.Meshtastic.Port,
		SendTimeout: cfg.GetSendTimeout(),
	})
	if err != nil {
		return fmt.Errorf("creating radio sender: %w", err)
	}

	if err := sender.CheckCLI(ctx); err != nil {
		return fmt.Errorf("meshtastic CLI check: %w", err)
	}
	log.Info("meshtastic CLI available", "cli", cfg.Meshtastic.CLI)

	if err := meshtastic.ProbePort(cfg.Meshtastic.Port, cfg.Meshtastic.BaudRate); err != nil {
		return fmt.Errorf("radio serial probe: %w", err)
	}
	log.Info("radio serial port available", "port", cfg.Meshtastic.Port)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Create and start the bridge
	bridge, err := startBridge(ctx, cfg, mqttClient, sender, influxClient, log)
	if err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		bridge.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred cleanup runs in reverse order:
	// 1. Bridge (stops health reporting, cancels in-flight sends)
	// 2. InfluxDB (if enabled)
	// 3. MQTT (publishes offline status)

	log.Info("meshbridge stopped")
	return nil
}

// Default configuration file path (optional; the bridge is normally
// configured purely through environment variables).
const defaultConfigPath = "configs/config.yaml"

// getConfigPath returns the configuration file path.
//
// Uses the MESHBRIDGE_CONFIG environment variable if set. Otherwise the
// default path is used only when the file actually exists; a missing
// default file is not an error, configuration then comes from defaults
// and environment variables alone.
func getConfigPath() string {
	if path := os.Getenv("MESHBRIDGE_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Radio health is verified during startup: CheckCLI and ProbePort run
	// before the MQTT connection is attempted.

	return nil
}

// startBridge wires the bridge to its dependencies and starts it.
//
// Parameters:
//   - ctx: Context for startup/cancellation
//   - cfg: Application configuration
//   - mqttClient: MQTT client for subscribing/publishing
//   - sender: Radio sender
//   - influxClient: Telemetry sink (may be nil if disabled)
//   - log: Logger instance
//
// Returns:
//   - *zigbee.Bridge: Running bridge
//   - error: If the bridge fails to start
func startBridge(ctx context.Context, cfg *config.Config, mqttClient *mqtt.Client, sender *meshtastic.Sender, influxClient *influxdb.Client, log *logging.Logger) (*zigbee.Bridge, error) {
	// Adapt the infrastructure MQTT client to the bridge interface
	mqttAdapter := &mqttBridgeAdapter{client: mqttClient}

	opts := zigbee.BridgeOptions{
		Config: zigbee.Config{
			BridgeID:     cfg.Bridge.ID,
			Topics:       cfg.MQTT.Topics,
			QoS:          byte(cfg.MQTT.QoS),
			ChannelIndex: cfg.Meshtastic.ChannelIndex,
			RadioPort:    sender.Port(),
			SendTimeout:  cfg.GetSendTimeout(),
		},
		MQTTClient: mqttAdapter,
		Radio:      sender,
		Logger:     log,
	}

	// zigbee.MetricsRecorder is satisfied by the InfluxDB client, but a nil
	// *influxdb.Client must become a nil interface, not a typed nil.
	if influxClient != nil {
		opts.Metrics = influxClient
	}

	bridge, err := zigbee.NewBridge(opts)
	if err != nil {
		return nil, fmt.Errorf("creating bridge: %w", err)
	}

	if err := bridge.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting bridge: %w", err)
	}
	log.Info("bridge started",
		"topics", len(cfg.MQTT.Topics),
		"radio_port", sender.Port(),
		"channel_index", cfg.Meshtastic.ChannelIndex,
	)

	return bridge, nil
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The difference is the Subscribe handler signature:
// - Infrastructure mqtt: func(topic string, payload []byte) error
// - Bridge expects: func(topic string, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements zigbee.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements zigbee.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	// Wrap the void handler to return nil error (bridge handlers don't return errors)
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements zigbee.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}
