package meshtastic

import "errors"

// Domain errors for the meshtastic package.
var (
	// ErrInvalidConfig is returned when sender configuration is invalid.
	ErrInvalidConfig = errors.New("meshtastic: invalid configuration")

	// ErrCLIUnavailable is returned when the meshtastic CLI is missing or broken.
	ErrCLIUnavailable = errors.New("meshtastic: CLI unavailable")

	// ErrDeviceUnavailable is returned when the radio's serial device cannot be opened.
	ErrDeviceUnavailable = errors.New("meshtastic: radio device unavailable")

	// ErrSendFailed is returned when a send invocation fails.
	ErrSendFailed = errors.New("meshtastic: send failed")

	// ErrSendTimeout is returned when a send invocation exceeds its timeout.
	ErrSendTimeout = errors.New("meshtastic: send timed out")
)
