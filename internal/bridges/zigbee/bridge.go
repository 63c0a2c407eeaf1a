package zigbee

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Bridge operation constants.
const (
	// defaultSendTimeout bounds a single radio send.
	defaultSendTimeout = 30 * time.Second

	// defaultHealthInterval is how often health status is published.
	defaultHealthInterval = 30 * time.Second
)

// Bridge forwards Zigbee2MQTT sensor events to the mesh radio.
// It handles:
//   - Subscribing to the configured device topics
//   - Classifying each payload (motion, door/tamper, or nothing)
//   - Sending exactly one radio message per produced notification
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	cfg    Config
	mqtt   MQTTClient
	radio  RadioSender
	health *HealthReporter

	// stats counts message outcomes since start.
	stats Stats

	// Shutdown coordination
	stopOnce  sync.Once
	ctx       context.Context    // Bridge-level context, cancelled on Stop()
	ctxCancel context.CancelFunc

	// Logger (optional)
	logger   Logger
	loggerMu sync.RWMutex
}

// Config holds the bridge's runtime configuration.
type Config struct {
	// BridgeID identifies this bridge in health messages.
	BridgeID string

	// Topics are the Zigbee2MQTT device topics to subscribe to.
	Topics []string

	// QoS is the subscription QoS level.
	QoS byte

	// ChannelIndex is the mesh channel notifications are sent on.
	ChannelIndex int

	// RadioPort is the radio's serial device, reported in health messages.
	RadioPort string

	// SendTimeout bounds a single radio send. Default: 30s.
	SendTimeout time.Duration

	// HealthInterval is how often health status is published. Default: 30s.
	HealthInterval time.Duration
}

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// RadioSender is the interface for the mesh radio.
// Satisfied by *meshtastic.Sender.
type RadioSender interface {
	// SendText broadcasts a text message on the given channel index.
	SendText(ctx context.Context, message string, channelIndex int) error
}

// Logger is the logging interface for the bridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsRecorder receives cumulative bridge counters.
// Satisfied by *influxdb.Client. Optional; nil disables telemetry.
type MetricsRecorder interface {
	// WriteBridgeMetric records the current value of a named counter.
	WriteBridgeMetric(bridgeID string, metric string, value float64)
}

// Stats holds cumulative message counters since bridge start.
type Stats struct {
	received   atomic.Uint64
	forwarded  atomic.Uint64
	ignored    atomic.Uint64
	malformed  atomic.Uint64
	sendErrors atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the bridge counters.
type StatsSnapshot struct {
	Received   uint64 `json:"received"`
	Forwarded  uint64 `json:"forwarded"`
	Ignored    uint64 `json:"ignored"`
	Malformed  uint64 `json:"malformed"`
	SendErrors uint64 `json:"send_errors"`
}

// Snapshot returns a consistent-enough copy of the counters for reporting.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Received:   s.received.Load(),
		Forwarded:  s.forwarded.Load(),
		Ignored:    s.ignored.Load(),
		Malformed:  s.malformed.Load(),
		SendErrors: s.sendErrors.Load(),
	}
}

// BridgeOptions holds dependencies for creating a bridge.
type BridgeOptions struct {
	// Config is the bridge configuration.
	Config Config

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Radio is the mesh radio sender.
	Radio RadioSender

	// Logger is optional structured logger.
	Logger Logger

	// Metrics is optional telemetry sink for bridge counters.
	Metrics MetricsRecorder
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("%w: MQTT client is required", ErrInvalidConfig)
	}
	if opts.Radio == nil {
		return nil, fmt.Errorf("%w: radio sender is required", ErrInvalidConfig)
	}
	if len(opts.Config.Topics) == 0 {
		return nil, fmt.Errorf("%w: at least one topic is required", ErrInvalidConfig)
	}
	if opts.Config.BridgeID == "" {
		opts.Config.BridgeID = "meshbridge"
	}
	if opts.Config.SendTimeout <= 0 {
		opts.Config.SendTimeout = defaultSendTimeout
	}
	if opts.Config.HealthInterval <= 0 {
		opts.Config.HealthInterval = defaultHealthInterval
	}

	// Bridge-level context so in-flight sends are cancelled on Stop()
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		cfg:       opts.Config,
		mqtt:      opts.MQTTClient,
		radio:     opts.Radio,
		ctx:       ctx,
		ctxCancel: ctxCancel,
		logger:    opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:     opts.Config.BridgeID,
		ChannelIndex: opts.Config.ChannelIndex,
		RadioPort:    opts.Config.RadioPort,
		Interval:     opts.Config.HealthInterval,
		Publisher:    opts.MQTTClient,
		Stats:        &b.stats,
		Metrics:      opts.Metrics,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This subscribes to the configured device topics and starts health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logWarn("failed to publish starting status", "error", err)
	}

	for _, topic := range b.cfg.Topics {
		if err := b.mqtt.Subscribe(topic, b.cfg.QoS, b.handleMessage); err != nil {
			return fmt.Errorf("subscribe to %q: %w", topic, err)
		}
		b.logInfo("subscribed to device topic", "topic", topic)
	}

	b.health.Start(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logWarn("failed to publish health status", "error", err)
	}

	b.logInfo("bridge started",
		"bridge_id", b.cfg.BridgeID,
		"topics", len(b.cfg.Topics),
		"channel_index", b.cfg.ChannelIndex)

	return nil
}

// Stop gracefully shuts down the bridge.
// In-flight radio sends are cancelled. Safe to call multiple times.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.ctxCancel()
		b.health.Stop()
		b.logInfo("bridge stopped", "stats", b.stats.Snapshot())
	})
}

// Stats returns a snapshot of the bridge's message counters.
func (b *Bridge) Stats() StatsSnapshot {
	return b.stats.Snapshot()
}

// handleMessage processes one inbound device message.
//
// Each message is evaluated statelessly: classify, and if a notification
// results, send it exactly once. Failures are counted and logged, never
// retried; the next sensor report is a fresh evaluation.
func (b *Bridge) handleMessage(topic string, payload []byte) {
	b.stats.received.Add(1)

	b.logDebug("message received", "topic", topic, "bytes", len(payload))

	notification, err := Classify(payload)
	if err != nil {
		b.stats.malformed.Add(1)
		b.logWarn("dropping malformed payload", "topic", topic, "error", err)
		return
	}

	if notification == "" {
		b.stats.ignored.Add(1)
		return
	}

	b.logInfo("forwarding notification",
		"topic", topic,
		"notification", notification,
		"channel_index", b.cfg.ChannelIndex)

	sendCtx, cancel := context.WithTimeout(b.ctx, b.cfg.SendTimeout)
	defer cancel()

	if err := b.radio.SendText(sendCtx, notification, b.cfg.ChannelIndex); err != nil {
		b.stats.sendErrors.Add(1)
		b.logError("radio send failed", "topic", topic, "error", err)
		return
	}

	b.stats.forwarded.Add(1)
}

// logDebug logs at debug level if a logger is set.
func (b *Bridge) logDebug(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Debug(msg, args...)
	}
}

// logInfo logs at info level if a logger is set.
func (b *Bridge) logInfo(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Info(msg, args...)
	}
}

// logWarn logs at warn level if a logger is set.
func (b *Bridge) logWarn(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Warn(msg, args...)
	}
}

// logError logs at error level if a logger is set.
func (b *Bridge) logError(msg string, args ...any) {
	if l := b.getLogger(); l != nil {
		l.Error(msg, args...)
	}
}

// getLogger returns the current logger (may be nil).
func (b *Bridge) getLogger() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	return b.logger
}

// SetLogger sets the logger for the bridge and its health reporter.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
	b.health.SetLogger(logger)
}
