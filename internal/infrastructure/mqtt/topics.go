package mqtt

import "fmt"

// Topic prefixes for bridge-owned topics.
//
// The bridge consumes topics owned by Zigbee2MQTT (configured per deployment,
// typically "zigbee2mqtt/<friendly_name>") and publishes its own status under
// the "meshbridge" prefix.
const (
	// TopicPrefixBridge is the base for all bridge-owned topics.
	TopicPrefixBridge = "meshbridge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "meshbridge/system"

	// TopicPrefixZigbee2MQTT is the default Zigbee2MQTT base topic.
	TopicPrefixZigbee2MQTT = "zigbee2mqtt"
)

// Topics provides builders for the bridge's MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the topic for the bridge's online/offline status.
// The LWT is registered on this topic.
//
// Example: meshbridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// Health returns the topic for periodic bridge health reports.
//
// Example: meshbridge/health
func (Topics) Health() string {
	return fmt.Sprintf("%s/health", TopicPrefixBridge)
}

// Device returns the Zigbee2MQTT topic for a device by friendly name,
// using the default base topic.
//
// Example: zigbee2mqtt/motion_outdoor
func (Topics) Device(friendlyName string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixZigbee2MQTT, friendlyName)
}

// AllDevices returns a wildcard pattern matching every Zigbee2MQTT device
// topic under the default base topic.
//
// Example: zigbee2mqtt/+
func (Topics) AllDevices() string {
	return fmt.Sprintf("%s/+", TopicPrefixZigbee2MQTT)
}
