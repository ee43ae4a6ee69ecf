// Package darwinhost implements the capability adapter set for macOS.
// Clipboard uses pbcopy/pbpaste, notifications go through osascript, battery
// state is parsed from pmset. Share, geolocation and orientation are not
// offered; the registry marks them unavailable at construction.
package darwinhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/platform"
)

// Host is the macOS adapter set. Stateless; every operation shells out.
type Host struct{}

// New returns the macOS adapter set.
func New() *Host {
	return &Host{}
}

// Family implements platform.AdapterSet.
func (h *Host) Family() entity.OSFamily {
	return entity.FamilyDarwin
}

// Invoker implements platform.AdapterSet.
func (h *Host) Invoker(name entity.CapabilityName) (platform.Invoker, bool) {
	switch name {
	case entity.CapClipboardWrite:
		return h.clipboardWrite, true
	case entity.CapClipboardRead:
		return h.clipboardRead, true
	case entity.CapNotificationShow:
		return h.notificationShow, true
	case entity.CapVibrate:
		return platform.NoopInvoker(nil), true
	case entity.CapBatteryGet:
		return h.batteryGet, true
	case entity.CapNetworkGet:
		return h.networkGet, true
	case entity.CapScreenOrientationGet:
		return platform.NoopInvoker(entity.OrientationStatus{Type: "landscape-primary", Angle: 0}), true
	}
	return nil, false
}

// Watcher implements platform.AdapterSet.
func (h *Host) Watcher(entity.CapabilityName) (platform.Watcher, bool) {
	return nil, false
}

// Close implements platform.AdapterSet.
func (h *Host) Close() error {
	return nil
}

func (h *Host) clipboardWrite(ctx context.Context, args json.RawMessage) (any, error) {
	var a entity.ClipboardWriteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, "pbcopy")
	cmd.Stdin = bytes.NewReader([]byte(a.Text))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pbcopy: %w", err)
	}
	return nil, nil
}

func (h *Host) clipboardRead(ctx context.Context, _ json.RawMessage) (any, error) {
	out, err := exec.CommandContext(ctx, "pbpaste").Output()
	if err != nil {
		return nil, fmt.Errorf("pbpaste: %w", err)
	}
	return entity.ClipboardReadResult{Text: string(out)}, nil
}

func (h *Host) notificationShow(ctx context.Context, args json.RawMessage) (any, error) {
	var a entity.NotificationShowArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	script := fmt.Sprintf("display notification %s with title %s",
		appleScriptString(a.Body), appleScriptString(a.Title))
	if err := exec.CommandContext(ctx, "osascript", "-e", script).Run(); err != nil {
		return nil, fmt.Errorf("osascript: %w", err)
	}
	return nil, nil
}

// appleScriptString quotes untrusted text for embedding in an AppleScript
// source line.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}

// batteryGet parses `pmset -g batt`. Desktop Macs without a battery report
// charging at level 1.
func (h *Host) batteryGet(ctx context.Context, _ json.RawMessage) (any, error) {
	out, err := exec.CommandContext(ctx, "pmset", "-g", "batt").Output()
	if err != nil {
		return nil, fmt.Errorf("pmset: %w", err)
	}
	status, ok := parsePmset(string(out))
	if !ok {
		return entity.BatteryStatus{Charging: true, Level: 1}, nil
	}
	return status, nil
}

// parsePmset extracts level and charging state from pmset output, e.g.
// " -InternalBattery-0 (id=1234)	87%; charging; 0:42 remaining".
func parsePmset(out string) (entity.BatteryStatus, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "%") {
			continue
		}
		fields := strings.Split(line, ";")
		if len(fields) < 2 {
			continue
		}

		head := fields[0]
		idx := strings.LastIndexByte(head, '\t')
		if idx >= 0 {
			head = head[idx+1:]
		}
		head = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(head), "%"))
		if idx := strings.LastIndexByte(head, ' '); idx >= 0 {
			head = head[idx+1:]
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(head, "%"))
		if err != nil {
			continue
		}

		state := strings.TrimSpace(fields[1])
		charging := state == "charging" || state == "charged" || state == "finishing charge"
		return entity.BatteryStatus{Charging: charging, Level: float64(pct) / 100}, true
	}
	return entity.BatteryStatus{}, false
}

// networkGet probes the default route. No interface classification is
// attempted; type stays unknown while online.
func (h *Host) networkGet(ctx context.Context, _ json.RawMessage) (any, error) {
	out, err := exec.CommandContext(ctx, "route", "-n", "get", "default").Output()
	if err != nil || !strings.Contains(string(out), "interface:") {
		return entity.NetworkStatus{Online: false, Type: "none"}, nil
	}
	return entity.NetworkStatus{Online: true, Type: "unknown"}, nil
}
