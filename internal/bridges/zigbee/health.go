package zigbee

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Health status values published to the health topic.
const (
	// StatusStarting indicates the bridge is initializing.
	StatusStarting = "starting"

	// StatusHealthy indicates the bridge is connected and forwarding.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the bridge is running but sends are failing.
	StatusDegraded = "degraded"

	// StatusStopping indicates the bridge is shutting down.
	StatusStopping = "stopping"
)

// healthTopic is where periodic health messages are published (retained).
const healthTopic = "meshbridge/health"

// HealthMessage is the JSON structure published to the health topic.
type HealthMessage struct {
	BridgeID     string        `json:"bridge_id"`
	Status       string        `json:"status"`
	Reason       string        `json:"reason,omitempty"`
	RadioPort    string        `json:"radio_port,omitempty"`
	ChannelIndex int           `json:"channel_index"`
	Uptime       string        `json:"uptime"`
	Counters     StatsSnapshot `json:"counters"`
	Timestamp    string        `json:"timestamp"`
}

// HealthPublisher is the publishing capability the reporter needs.
// Satisfied by the bridge's MQTTClient.
type HealthPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// HealthReporter periodically publishes bridge health to MQTT and,
// when a MetricsRecorder is configured, records the bridge counters.
type HealthReporter struct {
	bridgeID     string
	channelIndex int
	radioPort    string
	interval     time.Duration
	publisher    HealthPublisher
	stats        *Stats
	metrics      MetricsRecorder
	startTime    time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex

	// lastSendErrors tracks the counter at the previous tick so a burst of
	// send failures marks the bridge degraded until sends succeed again.
	// tickMu guards the deltas: currentStatus runs from the ticker goroutine
	// and from PublishNow.
	tickMu         sync.Mutex
	lastSendErrors uint64
	lastForwarded  uint64
}

// HealthReporterConfig holds dependencies for creating a health reporter.
type HealthReporterConfig struct {
	BridgeID     string
	ChannelIndex int
	RadioPort    string
	Interval     time.Duration
	Publisher    HealthPublisher
	Stats        *Stats
	Metrics      MetricsRecorder
}

// NewHealthReporter creates a health reporter. Call Start() to begin
// periodic publishing.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultHealthInterval
	}

	return &HealthReporter{
		bridgeID:     cfg.BridgeID,
		channelIndex: cfg.ChannelIndex,
		radioPort:    cfg.RadioPort,
		interval:     cfg.Interval,
		publisher:    cfg.Publisher,
		stats:        cfg.Stats,
		metrics:      cfg.Metrics,
		startTime:    time.Now(),
		done:         make(chan struct{}),
	}
}

// Start begins periodic health publishing. The reporter stops when ctx is
// cancelled or Stop() is called.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-h.done:
				return
			case <-ticker.C:
				if err := h.publish(h.currentStatus()); err != nil {
					h.logWarn("health publish failed", "error", err)
				}
				h.recordMetrics()
			}
		}
	}()
}

// Stop halts periodic publishing and publishes a final stopping status.
// Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		if err := h.publishWithReason(StatusStopping, "shutdown requested"); err != nil {
			h.logWarn("failed to publish stopping status", "error", err)
		}
	})
}

// PublishStarting publishes an initial starting status.
func (h *HealthReporter) PublishStarting() error {
	return h.publish(StatusStarting)
}

// PublishNow publishes the current health status immediately.
func (h *HealthReporter) PublishNow() error {
	return h.publish(h.currentStatus())
}

// currentStatus derives the health status from connectivity and counters.
func (h *HealthReporter) currentStatus() string {
	if h.publisher != nil && !h.publisher.IsConnected() {
		return StatusDegraded
	}

	// Degraded when sends failed since the last tick without any success.
	snap := h.stats.Snapshot()

	h.tickMu.Lock()
	sendErrDelta := snap.SendErrors - h.lastSendErrors
	forwardedDelta := snap.Forwarded - h.lastForwarded
	h.lastSendErrors = snap.SendErrors
	h.lastForwarded = snap.Forwarded
	h.tickMu.Unlock()

	if sendErrDelta > 0 && forwardedDelta == 0 {
		return StatusDegraded
	}

	return StatusHealthy
}

func (h *HealthReporter) publish(status string) error {
	return h.publishWithReason(status, "")
}

func (h *HealthReporter) publishWithReason(status, reason string) error {
	if h.publisher == nil {
		return nil
	}

	msg := HealthMessage{
		BridgeID:     h.bridgeID,
		Status:       status,
		Reason:       reason,
		RadioPort:    h.radioPort,
		ChannelIndex: h.channelIndex,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Counters:     h.stats.Snapshot(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal health message: %w", err)
	}

	return h.publisher.Publish(healthTopic, payload, 0, true)
}

// recordMetrics writes the cumulative counters to the telemetry sink.
func (h *HealthReporter) recordMetrics() {
	if h.metrics == nil {
		return
	}

	snap := h.stats.Snapshot()
	h.metrics.WriteBridgeMetric(h.bridgeID, "received", float64(snap.Received))
	h.metrics.WriteBridgeMetric(h.bridgeID, "forwarded", float64(snap.Forwarded))
	h.metrics.WriteBridgeMetric(h.bridgeID, "ignored", float64(snap.Ignored))
	h.metrics.WriteBridgeMetric(h.bridgeID, "malformed", float64(snap.Malformed))
	h.metrics.WriteBridgeMetric(h.bridgeID, "send_errors", float64(snap.SendErrors))
}

// SetLogger sets the logger for the health reporter.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	defer h.loggerMu.Unlock()
	h.logger = logger
}

func (h *HealthReporter) logWarn(msg string, args ...any) {
	h.loggerMu.RLock()
	l := h.logger
	h.loggerMu.RUnlock()
	if l != nil {
		l.Warn(msg, args...)
	}
}
