// Package simhost is the deterministic in-memory adapter family. It backs the
// demo console and the test suite: every capability is implemented, state is
// held in the struct, and geolocation fixes come from a scripted route instead
// of real hardware.
package simhost

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/platform"
)

// Options tunes the simulated host.
type Options struct {
	// WatchInterval is the delay between simulated position fixes. Zero means
	// DefaultWatchInterval.
	WatchInterval time.Duration

	// Route is the position sequence a watch cycles through. Empty means the
	// built-in default route.
	Route []entity.Position
}

// DefaultWatchInterval paces simulated position delivery.
const DefaultWatchInterval = 200 * time.Millisecond

// Host is an in-memory implementation of every capability. Safe for
// concurrent use; all state lives behind one mutex.
type Host struct {
	mu            sync.Mutex
	clipboard     string
	notifications []entity.NotificationShowArgs
	shares        []entity.ShareArgs
	vibrations    [][]int
	battery       entity.BatteryStatus
	network       entity.NetworkStatus
	orientation   entity.OrientationStatus
	lockDepth     int

	watchInterval time.Duration
	route         []entity.Position
}

// New constructs a simulated host with a charged battery, a wifi link and a
// landscape screen.
func New(opts Options) *Host {
	interval := opts.WatchInterval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	route := opts.Route
	if len(route) == 0 {
		route = defaultRoute()
	}
	return &Host{
		battery:       entity.BatteryStatus{Charging: true, Level: 0.87},
		network:       entity.NetworkStatus{Online: true, Type: "wifi"},
		orientation:   entity.OrientationStatus{Type: "landscape-primary", Angle: 0},
		watchInterval: interval,
		route:         route,
	}
}

func defaultRoute() []entity.Position {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	return []entity.Position{
		{Latitude: 48.8584, Longitude: 2.2945, AccuracyMeters: 5, TimestampMs: base},
		{Latitude: 48.8590, Longitude: 2.2950, AccuracyMeters: 5, TimestampMs: base + 1000},
		{Latitude: 48.8596, Longitude: 2.2956, AccuracyMeters: 5, TimestampMs: base + 2000},
	}
}

// Family implements platform.AdapterSet.
func (h *Host) Family() entity.OSFamily {
	return entity.FamilySim
}

// Invoker implements platform.AdapterSet.
func (h *Host) Invoker(name entity.CapabilityName) (platform.Invoker, bool) {
	switch name {
	case entity.CapClipboardWrite:
		return h.clipboardWrite, true
	case entity.CapClipboardRead:
		return h.clipboardRead, true
	case entity.CapShare:
		return h.share, true
	case entity.CapNotificationShow:
		return h.notificationShow, true
	case entity.CapGeolocationGetCurrentPosition:
		return h.currentPosition, true
	case entity.CapVibrate:
		return h.vibrate, true
	case entity.CapBatteryGet:
		return h.batteryGet, true
	case entity.CapNetworkGet:
		return h.networkGet, true
	case entity.CapScreenOrientationLock:
		return h.orientationLock, true
	case entity.CapScreenOrientationUnlock:
		return h.orientationUnlock, true
	case entity.CapScreenOrientationGet:
		return h.orientationGet, true
	}
	return nil, false
}

// Watcher implements platform.AdapterSet.
func (h *Host) Watcher(name entity.CapabilityName) (platform.Watcher, bool) {
	if name == entity.CapGeolocationWatchPosition {
		return h.watchPosition, true
	}
	return nil, false
}

// Close implements platform.AdapterSet. The simulated host holds no OS
// resources.
func (h *Host) Close() error {
	return nil
}

func (h *Host) clipboardWrite(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.ClipboardWriteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.clipboard = a.Text
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) clipboardRead(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return entity.ClipboardReadResult{Text: h.clipboard}, nil
}

func (h *Host) share(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.ShareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.shares = append(h.shares, a)
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) notificationShow(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.NotificationShowArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.notifications = append(h.notifications, a)
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) currentPosition(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.route[0], nil
}

func (h *Host) vibrate(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.VibrateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.vibrations = append(h.vibrations, a.Pattern)
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) batteryGet(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.battery, nil
}

func (h *Host) networkGet(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.network, nil
}

func (h *Host) orientationLock(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.OrientationLockArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.lockDepth++
	switch a.Orientation {
	case "portrait", "portrait-primary":
		h.orientation = entity.OrientationStatus{Type: "portrait-primary", Angle: 90}
	case "portrait-secondary":
		h.orientation = entity.OrientationStatus{Type: "portrait-secondary", Angle: 270}
	case "landscape-secondary":
		h.orientation = entity.OrientationStatus{Type: "landscape-secondary", Angle: 180}
	default:
		h.orientation = entity.OrientationStatus{Type: "landscape-primary", Angle: 0}
	}
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) orientationUnlock(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	if h.lockDepth > 0 {
		h.lockDepth--
	}
	h.mu.Unlock()
	return nil, nil
}

func (h *Host) orientationGet(context.Context, json.RawMessage) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.orientation, nil
}

// watchPosition replays the route on a ticker until cancelled.
func (h *Host) watchPosition(ctx context.Context, _ json.RawMessage, emit platform.EventFunc) (platform.CancelFunc, error) {
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}

	go func() {
		ticker := time.NewTicker(h.watchInterval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.mu.Lock()
				pos := h.route[i%len(h.route)]
				h.mu.Unlock()
				i++
				select {
				case <-done:
					return
				default:
					emit(pos)
				}
			}
		}
	}()

	return cancel, nil
}

// Clipboard reports the simulated clipboard contents.
func (h *Host) Clipboard() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clipboard
}

// Notifications returns every notification shown so far.
func (h *Host) Notifications() []entity.NotificationShowArgs {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]entity.NotificationShowArgs, len(h.notifications))
	copy(out, h.notifications)
	return out
}

// Shares returns every share payload delivered so far.
func (h *Host) Shares() []entity.ShareArgs {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]entity.ShareArgs, len(h.shares))
	copy(out, h.shares)
	return out
}

// Vibrations returns every vibration pattern requested so far.
func (h *Host) Vibrations() [][]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]int, len(h.vibrations))
	copy(out, h.vibrations)
	return out
}

// SetBattery overrides the simulated battery state.
func (h *Host) SetBattery(status entity.BatteryStatus) {
	h.mu.Lock()
	h.battery = status
	h.mu.Unlock()
}

// SetNetwork overrides the simulated network state.
func (h *Host) SetNetwork(status entity.NetworkStatus) {
	h.mu.Lock()
	h.network = status
	h.mu.Unlock()
}
