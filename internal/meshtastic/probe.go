package meshtastic

import (
	"fmt"

	"go.bug.st/serial"
)

// ProbePort verifies the radio's serial device exists and can be opened.
//
// The port is opened and immediately closed; this runs once at startup,
// before the CLI ever touches the device. A radio that is unplugged or
// claimed by another process fails here, the process exits, and the
// supervisor retries after its restart delay.
//
// Parameters:
//   - port: Serial device path (e.g., "/dev/ttyUSB0")
//   - baudRate: Line speed for the open attempt
//
// Returns:
//   - error: nil if the device opened, wrapped ErrDeviceUnavailable otherwise
func ProbePort(port string, baudRate int) error {
	if baudRate <= 0 {
		baudRate = 115200
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	p, err := serial.Open(port, mode)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeviceUnavailable, port, err)
	}

	if err := p.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrDeviceUnavailable, port, err)
	}

	return nil
}
