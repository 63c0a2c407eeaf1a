package meshtastic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeCLI writes a shell script standing in for the meshtastic CLI and
// returns its path. The script body decides the behaviour under test.
func fakeCLI(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "meshtastic")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0700); err != nil {
		t.Fatalf("failed to write fake CLI: %v", err)
	}
	return path
}

func TestNewSender_Defaults(t *testing.T) {
	sender, err := NewSender(SenderConfig{Port: "/dev/ttyUSB0"})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	if sender.cfg.CLI != "meshtastic" {
		t.Errorf("CLI = %q, want %q", sender.cfg.CLI, "meshtastic")
	}
	if sender.cfg.SendTimeout != defaultSendTimeout {
		t.Errorf("SendTimeout = %v, want %v", sender.cfg.SendTimeout, defaultSendTimeout)
	}
	if sender.Port() != "/dev/ttyUSB0" {
		t.Errorf("Port() = %q, want %q", sender.Port(), "/dev/ttyUSB0")
	}
}

func TestNewSender_MissingPort(t *testing.T) {
	_, err := NewSender(SenderConfig{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewSender() error = %v, want ErrInvalidConfig", err)
	}
}

func TestCheckCLI(t *testing.T) {
	sender, err := NewSender(SenderConfig{
		Port: "/dev/ttyUSB0",
		CLI:  fakeCLI(t, "exit 0"),
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	if err := sender.CheckCLI(context.Background()); err != nil {
		t.Errorf("CheckCLI() error = %v, want nil", err)
	}
}

func TestCheckCLI_NotFound(t *testing.T) {
	sender, err := NewSender(SenderConfig{
		Port: "/dev/ttyUSB0",
		CLI:  filepath.Join(t.TempDir(), "does-not-exist"),
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	err = sender.CheckCLI(context.Background())
	if !errors.Is(err, ErrCLIUnavailable) {
		t.Errorf("CheckCLI() error = %v, want ErrCLIUnavailable", err)
	}
}

func TestCheckCLI_NonZeroExit(t *testing.T) {
	sender, err := NewSender(SenderConfig{
		Port: "/dev/ttyUSB0",
		CLI:  fakeCLI(t, "exit 2"),
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	err = sender.CheckCLI(context.Background())
	if !errors.Is(err, ErrCLIUnavailable) {
		t.Errorf("CheckCLI() error = %v, want ErrCLIUnavailable", err)
	}
}

func TestSendText(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	sender, err := NewSender(SenderConfig{
		Port: "/dev/ttyACM0",
		CLI:  fakeCLI(t, `printf '%s\n' "$@" > `+argsFile),
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	if err := sender.SendText(context.Background(), "Motion detected", 5); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("failed to read recorded args: %v", err)
	}

	got := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	want := []string{"--port", "/dev/ttyACM0", "--ch-index", "5", "--send", "Motion detected"}
	if len(got) != len(want) {
		t.Fatalf("CLI args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("arg[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSendText_EmptyMessage(t *testing.T) {
	sender, err := NewSender(SenderConfig{Port: "/dev/ttyUSB0"})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	err = sender.SendText(context.Background(), "", 5)
	if !errors.Is(err, ErrSendFailed) {
		t.Errorf("SendText() error = %v, want ErrSendFailed", err)
	}
}

func TestSendText_CLIFailure(t *testing.T) {
	sender, err := NewSender(SenderConfig{
		Port: "/dev/ttyUSB0",
		CLI:  fakeCLI(t, `echo "No Meshtastic device detected" >&2; exit 1`),
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	err = sender.SendText(context.Background(), "Door triggered!", 5)
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("SendText() error = %v, want ErrSendFailed", err)
	}
	if !strings.Contains(err.Error(), "No Meshtastic device detected") {
		t.Errorf("SendText() error %q should include CLI output", err.Error())
	}
}

func TestSendText_Timeout(t *testing.T) {
	sender, err := NewSender(SenderConfig{
		Port:        "/dev/ttyUSB0",
		CLI:         fakeCLI(t, "exec sleep 5"),
		SendTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewSender() error = %v", err)
	}

	err = sender.SendText(context.Background(), "Motion detected", 5)
	if !errors.Is(err, ErrSendTimeout) {
		t.Errorf("SendText() error = %v, want ErrSendTimeout", err)
	}
}
