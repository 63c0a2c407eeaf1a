// Package influxdb provides an optional telemetry sink for bridge counters.
//
// When enabled, the bridge writes its cumulative message counters
// (received, forwarded, ignored, malformed, send errors) to InfluxDB on
// each health tick. Writes are batched and non-blocking; a write failure
// never affects message forwarding.
//
// The bridge deliberately does not record individual sensor events here,
// only operational counters.
package influxdb
