package simhost

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

func TestEveryDeclaredCapabilityIsServed(t *testing.T) {
	h := New(Options{})

	oneShots := []entity.CapabilityName{
		entity.CapClipboardWrite,
		entity.CapClipboardRead,
		entity.CapShare,
		entity.CapNotificationShow,
		entity.CapGeolocationGetCurrentPosition,
		entity.CapVibrate,
		entity.CapBatteryGet,
		entity.CapNetworkGet,
		entity.CapScreenOrientationLock,
		entity.CapScreenOrientationUnlock,
		entity.CapScreenOrientationGet,
	}
	for _, name := range oneShots {
		_, ok := h.Invoker(name)
		require.True(t, ok, "missing invoker for %s", name)
	}

	_, ok := h.Watcher(entity.CapGeolocationWatchPosition)
	require.True(t, ok)

	_, ok = h.Invoker("no.such.capability")
	require.False(t, ok)
}

func TestClipboardStateRoundTrip(t *testing.T) {
	h := New(Options{})
	ctx := context.Background()

	write, _ := h.Invoker(entity.CapClipboardWrite)
	_, err := write(ctx, json.RawMessage(`{"text":"copied"}`))
	require.NoError(t, err)
	require.Equal(t, "copied", h.Clipboard())

	read, _ := h.Invoker(entity.CapClipboardRead)
	out, err := read(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, entity.ClipboardReadResult{Text: "copied"}, out)
}

func TestOrientationLockChangesReportedState(t *testing.T) {
	h := New(Options{})
	ctx := context.Background()

	get, _ := h.Invoker(entity.CapScreenOrientationGet)
	out, err := get(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, entity.OrientationStatus{Type: "landscape-primary", Angle: 0}, out)

	lock, _ := h.Invoker(entity.CapScreenOrientationLock)
	_, err = lock(ctx, json.RawMessage(`{"orientation":"portrait-primary"}`))
	require.NoError(t, err)

	out, err = get(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "portrait-primary", out.(entity.OrientationStatus).Type)
}

func TestWatchPositionCyclesRouteUntilCancelled(t *testing.T) {
	route := []entity.Position{
		{Latitude: 1, Longitude: 1},
		{Latitude: 2, Longitude: 2},
	}
	h := New(Options{WatchInterval: 5 * time.Millisecond, Route: route})

	watch, _ := h.Watcher(entity.CapGeolocationWatchPosition)

	var mu sync.Mutex
	var fixes []entity.Position
	cancel, err := watch(context.Background(), nil, func(payload any) {
		mu.Lock()
		fixes = append(fixes, payload.(entity.Position))
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(fixes) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	cancel()

	mu.Lock()
	count := len(fixes)
	require.Equal(t, entity.Position{Latitude: 1, Longitude: 1}, fixes[0])
	require.Equal(t, entity.Position{Latitude: 2, Longitude: 2}, fixes[1])
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.LessOrEqual(t, len(fixes), count+1, "at most one in-flight fix may land after cancel")
}

func TestBatteryAndNetworkOverrides(t *testing.T) {
	h := New(Options{})
	ctx := context.Background()

	battery, _ := h.Invoker(entity.CapBatteryGet)
	out, err := battery(ctx, nil)
	require.NoError(t, err)
	require.True(t, out.(entity.BatteryStatus).Charging)

	h.SetBattery(entity.BatteryStatus{Charging: false, Level: 0.12})
	out, err = battery(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, entity.BatteryStatus{Charging: false, Level: 0.12}, out)

	h.SetNetwork(entity.NetworkStatus{Online: false, Type: "none"})
	network, _ := h.Invoker(entity.CapNetworkGet)
	out, err = network(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, entity.NetworkStatus{Online: false, Type: "none"}, out)
}

func TestShareAndNotificationRecording(t *testing.T) {
	h := New(Options{})
	ctx := context.Background()

	share, _ := h.Invoker(entity.CapShare)
	_, err := share(ctx, json.RawMessage(`{"title":"t","url":"https://example.com"}`))
	require.NoError(t, err)
	require.Len(t, h.Shares(), 1)
	require.Equal(t, "https://example.com", h.Shares()[0].URL)

	notify, _ := h.Invoker(entity.CapNotificationShow)
	_, err = notify(ctx, json.RawMessage(`{"title":"hello"}`))
	require.NoError(t, err)
	require.Len(t, h.Notifications(), 1)
}
