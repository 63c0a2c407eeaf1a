// Package zigbee bridges Zigbee2MQTT sensor events to a Meshtastic mesh
// radio.
//
// The bridge subscribes to a configurable set of Zigbee2MQTT device topics,
// classifies each JSON payload into a notification (motion or door/tamper),
// and broadcasts the notification on a configured mesh channel. Processing
// is stateless: every device report is evaluated on its own, with no
// debouncing, deduplication, or retry. Failed sends are counted and logged;
// the next sensor report is a fresh attempt.
//
// The package defines narrow interfaces (MQTTClient, RadioSender, Logger,
// MetricsRecorder) so the infrastructure implementations stay decoupled and
// the bridge is testable without a broker or radio.
package zigbee
