package linuxhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// Clipboard access uses the same tool chain most Wayland-era desktops ship:
// wl-copy/wl-paste first, xclip as the X11 fallback.

func clipboardToolsPresent() bool {
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return true
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return true
	}
	return false
}

func (h *Host) clipboardWrite(ctx context.Context, args json.RawMessage) (any, error) {
	var a entity.ClipboardWriteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if err := pipeTo(ctx, a.Text, "wl-copy"); err == nil {
		return nil, nil
	}
	if err := pipeTo(ctx, a.Text, "xclip", "-selection", "clipboard"); err == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("clipboard write failed: neither wl-copy nor xclip succeeded")
}

func (h *Host) clipboardRead(ctx context.Context, _ json.RawMessage) (any, error) {
	if out, err := readFrom(ctx, "wl-paste", "--no-newline"); err == nil {
		return entity.ClipboardReadResult{Text: out}, nil
	}
	out, err := readFrom(ctx, "xclip", "-selection", "clipboard", "-o")
	if err != nil {
		return nil, fmt.Errorf("clipboard read failed: neither wl-paste nor xclip succeeded")
	}
	return entity.ClipboardReadResult{Text: out}, nil
}

func pipeTo(ctx context.Context, text, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader([]byte(text))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func readFrom(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}
