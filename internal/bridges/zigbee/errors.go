package zigbee

import "errors"

// Domain errors for the Zigbee bridge package.
var (
	// ErrMalformedPayload is returned when a device payload is not valid JSON.
	// Malformed payloads are logged and dropped, never retried.
	ErrMalformedPayload = errors.New("zigbee: malformed payload")

	// ErrInvalidConfig is returned when bridge configuration is invalid.
	ErrInvalidConfig = errors.New("zigbee: invalid configuration")
)
