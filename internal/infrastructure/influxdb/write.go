package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteBridgeMetric writes a single bridge counter to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Counters are cumulative since bridge start, so dashboards should apply
// a difference() transform for rates.
//
// Parameters:
//   - bridgeID: Bridge identifier (e.g., "meshbridge")
//   - metric: The counter name (e.g., "messages_forwarded")
//   - value: The current counter value
//
// Example:
//
//	client.WriteBridgeMetric("meshbridge", "messages_forwarded", 42)
func (c *Client) WriteBridgeMetric(bridgeID string, metric string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"bridge_metrics",
		map[string]string{
			"bridge_id": bridgeID,
			"metric":    metric,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit WriteBridgeMetric.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
