package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/platform"
)

func collectingManager() (*SubscriptionManager, *[]SubscriptionEvent, *sync.Mutex) {
	var mu sync.Mutex
	events := []SubscriptionEvent{}
	m := NewSubscriptionManager(func(e SubscriptionEvent) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	return m, &events, &mu
}

func TestSubscriptionDeliversUntilCancelled(t *testing.T) {
	m, events, mu := collectingManager()

	var emitFn platform.EventFunc
	id, err := m.Start(context.Background(), entity.CapGeolocationWatchPosition, func(emit platform.EventFunc) (platform.CancelFunc, error) {
		emitFn = emit
		return func() {}, nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, 1, m.Len())

	emitFn("fix-1")
	emitFn("fix-2")

	m.Cancel(context.Background(), id)
	emitFn("fix-after-cancel")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, *events, 2)
	require.Equal(t, id, (*events)[0].SubscriptionID)
	require.Equal(t, "fix-1", (*events)[0].Payload)
}

func TestSubscriptionCancelIsIdempotent(t *testing.T) {
	m, _, _ := collectingManager()

	var cancels atomic.Int32
	id, err := m.Start(context.Background(), entity.CapGeolocationWatchPosition, func(platform.EventFunc) (platform.CancelFunc, error) {
		return func() { cancels.Add(1) }, nil
	})
	require.NoError(t, err)

	m.Cancel(context.Background(), id)
	m.Cancel(context.Background(), id)
	m.Cancel(context.Background(), "never-existed")

	require.Equal(t, int32(1), cancels.Load())
	require.Zero(t, m.Len())
}

func TestSubscriptionStartFailurePropagates(t *testing.T) {
	m, _, _ := collectingManager()

	_, err := m.Start(context.Background(), entity.CapGeolocationWatchPosition, func(platform.EventFunc) (platform.CancelFunc, error) {
		return nil, NewError(ErrOperationFailed, "no backend")
	})
	require.Error(t, err)
	require.Equal(t, ErrOperationFailed, KindOf(err))
	require.Zero(t, m.Len())
}

func TestDisposeAllStopsEverySubscription(t *testing.T) {
	m, events, mu := collectingManager()

	var cancels atomic.Int32
	emits := make([]platform.EventFunc, 0, 3)
	for i := 0; i < 3; i++ {
		_, err := m.Start(context.Background(), entity.CapGeolocationWatchPosition, func(emit platform.EventFunc) (platform.CancelFunc, error) {
			emits = append(emits, emit)
			return func() { cancels.Add(1) }, nil
		})
		require.NoError(t, err)
	}

	m.DisposeAll(context.Background())
	m.DisposeAll(context.Background())

	require.Equal(t, int32(3), cancels.Load())
	require.Zero(t, m.Len())

	for _, emit := range emits {
		emit("stale")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, *events, "events after teardown must be dropped")
}

func TestStartAfterDisposeFails(t *testing.T) {
	m, _, _ := collectingManager()
	m.DisposeAll(context.Background())

	_, err := m.Start(context.Background(), entity.CapGeolocationWatchPosition, func(platform.EventFunc) (platform.CancelFunc, error) {
		return func() {}, nil
	})
	require.Error(t, err)
	require.Equal(t, ErrBridgeDisposed, KindOf(err))
}
