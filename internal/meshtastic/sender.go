package meshtastic

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Default timeouts for CLI invocations.
const (
	// defaultSendTimeout is the maximum time to wait for a send to complete.
	// Mesh delivery over LoRa is slow; the CLI waits for the radio to accept
	// the packet before exiting.
	defaultSendTimeout = 30 * time.Second

	// defaultCheckTimeout is the maximum time to wait for the CLI availability check.
	defaultCheckTimeout = 10 * time.Second
)

// Sender sends text messages to a Meshtastic mesh via the meshtastic CLI.
//
// The CLI owns the serial protocol (protobuf framing, channel encryption);
// the bridge shells out one invocation per message. Sends are serialised
// with a mutex since a single radio hangs off a single serial device.
//
// Thread Safety: all methods are safe for concurrent use.
type Sender struct {
	cfg SenderConfig

	// sendMu serialises CLI invocations against the serial device.
	sendMu sync.Mutex
}

// SenderConfig holds configuration for the radio sender.
type SenderConfig struct {
	// CLI is the meshtastic executable. Default: "meshtastic".
	CLI string

	// Port is the serial device the radio is attached to.
	Port string

	// SendTimeout bounds a single send invocation. Default: 30s.
	SendTimeout time.Duration
}

// NewSender creates a radio sender.
//
// Parameters:
//   - cfg: Sender configuration (Port is required)
//
// Returns:
//   - *Sender: Ready for use after CheckCLI
//   - error: If the configuration is invalid
func NewSender(cfg SenderConfig) (*Sender, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: serial port is required", ErrInvalidConfig)
	}
	if cfg.CLI == "" {
		cfg.CLI = "meshtastic"
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	return &Sender{cfg: cfg}, nil
}

// CheckCLI verifies the meshtastic CLI is installed and runnable.
//
// Call once at startup; a missing CLI is a fatal deployment error
// (the process exits and the supervisor restarts it after the operator
// installs the package).
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: nil if the CLI responds, wrapped ErrCLIUnavailable otherwise
func (s *Sender) CheckCLI(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, defaultCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, s.cfg.CLI, "--help")
	if err := cmd.Run(); err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: check timed out after %v", ErrCLIUnavailable, defaultCheckTimeout)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %q not found in PATH", ErrCLIUnavailable, s.cfg.CLI)
		}
		return fmt.Errorf("%w: %w", ErrCLIUnavailable, err)
	}

	return nil
}

// SendText sends a text message on the given channel index.
//
// This is a single blocking CLI invocation:
//
//	meshtastic --port <dev> --ch-index <n> --send <message>
//
// Each notification maps to exactly one invocation; there is no retry.
//
// Parameters:
//   - ctx: Context for cancellation
//   - message: The text to broadcast
//   - channelIndex: Channel slot on the radio (0-7)
//
// Returns:
//   - error: nil on success, wrapped ErrSendFailed or ErrSendTimeout otherwise
func (s *Sender) SendText(ctx context.Context, message string, channelIndex int) error {
	if message == "" {
		return fmt.Errorf("%w: message cannot be empty", ErrSendFailed)
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	cmd := exec.CommandContext(sendCtx, s.cfg.CLI,
		"--port", s.cfg.Port,
		"--ch-index", strconv.Itoa(channelIndex),
		"--send", message,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: after %v", ErrSendTimeout, s.cfg.SendTimeout)
		}
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %w: %s", ErrSendFailed, err, detail)
		}
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	return nil
}

// Port returns the configured serial device path.
func (s *Sender) Port() string {
	return s.cfg.Port
}
