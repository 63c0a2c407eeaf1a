// Package meshtastic sends text messages to a Meshtastic mesh radio.
//
// The radio is attached over USB serial and driven through the official
// meshtastic CLI, which owns the serial protocol (protobuf framing, channel
// keys). This package wraps exactly one outbound capability: "send text
// message M on channel C".
//
//	sender, _ := meshtastic.NewSender(meshtastic.SenderConfig{Port: "/dev/ttyUSB0"})
//	err := sender.SendText(ctx, "Motion detected", 5)
//
// ProbePort offers a startup check that the serial device is present before
// the bridge subscribes to anything. Probe failures are fatal; recovery is
// the supervisor's restart policy.
package meshtastic
