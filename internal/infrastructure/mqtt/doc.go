// Package mqtt provides MQTT client connectivity for the bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support
//   - Message publishing for status and health topics
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Zigbee2MQTT publishes sensor events to the broker; the bridge subscribes
// to the configured device topics and publishes its own status under the
// meshbridge prefix.
//
//	Zigbee2MQTT → MQTT Broker → Bridge (this client) → Meshtastic radio
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("zigbee2mqtt/motion_outdoor", 0,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
