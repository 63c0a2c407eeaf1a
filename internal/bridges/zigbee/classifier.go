package zigbee

import (
	"encoding/json"
	"fmt"
)

// Notification texts broadcast to the mesh. These are deliberately short:
// LoRa airtime is scarce and the audience is a human glancing at a node.
const (
	// NotificationMotion is sent when a motion sensor reports occupancy.
	NotificationMotion = "Motion detected"

	// NotificationDoor is sent when a contact sensor opens or reports tampering.
	NotificationDoor = "Door triggered!"
)

// SensorEvent is the subset of a Zigbee2MQTT device payload the bridge
// inspects. All fields are optional; sensors only report the attributes
// they have. Pointer fields distinguish "absent" from "false".
type SensorEvent struct {
	// Occupancy is true while a motion sensor detects movement.
	Occupancy *bool `json:"occupancy,omitempty"`

	// Contact is true when a door/window sensor is closed, false when open.
	Contact *bool `json:"contact,omitempty"`

	// Tamper is true when the sensor housing has been interfered with.
	Tamper *bool `json:"tamper,omitempty"`
}

// Classify inspects a raw Zigbee2MQTT payload and returns the notification
// to broadcast, or "" when the payload carries no reportable event.
//
// Classification rules:
//   - occupancy == true                  → "Motion detected"
//   - contact == false OR tamper == true → "Door triggered!"
//   - anything else                      → no notification
//
// Classification is a pure function of the payload; it has no side effects.
//
// Parameters:
//   - payload: Raw JSON payload from the device topic
//
// Returns:
//   - string: Notification text, or "" if nothing should be sent
//   - error: Wrapped ErrMalformedPayload if the payload is not a JSON object
func Classify(payload []byte) (string, error) {
	var event SensorEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	return event.Notification(), nil
}

// Notification returns the notification text for the event, or "" when the
// event is not one the bridge reports.
func (e SensorEvent) Notification() string {
	if e.Occupancy != nil && *e.Occupancy {
		return NotificationMotion
	}

	if (e.Contact != nil && !*e.Contact) || (e.Tamper != nil && *e.Tamper) {
		return NotificationDoor
	}

	return ""
}
