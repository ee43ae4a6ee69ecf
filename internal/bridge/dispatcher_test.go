package bridge

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/permission"
)

type chanSink struct {
	results chan CallResult
	events  chan SubscriptionEvent
}

func newChanSink() *chanSink {
	return &chanSink{
		results: make(chan CallResult, 16),
		events:  make(chan SubscriptionEvent, 16),
	}
}

func (s *chanSink) DeliverResult(_ context.Context, r CallResult) { s.results <- r }
func (s *chanSink) DeliverEvent(_ context.Context, e SubscriptionEvent) {
	s.events <- e
}

func (s *chanSink) waitResult(t *testing.T) CallResult {
	t.Helper()
	select {
	case r := <-s.results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for call result")
		return CallResult{}
	}
}

func (s *chanSink) expectNoResult(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case r := <-s.results:
		t.Fatalf("unexpected result for %s", r.CorrelationID)
	case <-time.After(wait):
	}
}

const testCap entity.CapabilityName = "clipboard.read"

func testDispatcher(t *testing.T, handler Handler, contract Contract, gate *permission.Gate, timeout time.Duration) (*Dispatcher, *chanSink) {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.Register(contract, handler))
	if gate == nil {
		gate = permission.NewGate(permission.Options{})
	}
	sink := newChanSink()
	return NewDispatcher(registry, gate, "https://test.example", sink, timeout), sink
}

func plainContract(name entity.CapabilityName) Contract {
	return Contract{Name: name, Platforms: []entity.OSFamily{entity.FamilySim}, Kind: KindOneShot}
}

func TestDispatchResolvesSuccess(t *testing.T) {
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		return entity.ClipboardReadResult{Text: "hello"}, nil
	}, plainContract(testCap), nil, time.Second)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "c1", Capability: testCap})

	r := sink.waitResult(t)
	require.Equal(t, "c1", r.CorrelationID)
	require.True(t, r.OK)
	require.Equal(t, entity.ClipboardReadResult{Text: "hello"}, r.Value)
	require.Zero(t, d.PendingCount())
}

func TestDispatchUnknownCapability(t *testing.T) {
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	}, plainContract(testCap), nil, time.Second)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "c1", Capability: "no.such.capability"})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrUnknownCapability, r.Error.Kind)
}

func TestDispatchInvalidArguments(t *testing.T) {
	contract := plainContract(testCap)
	contract.Validate = validateNoArgs(testCap)

	var calls atomic.Int32
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		calls.Add(1)
		return nil, nil
	}, contract, nil, time.Second)

	d.Dispatch(context.Background(), CallRequest{
		CorrelationID: "c1",
		Capability:    testCap,
		Arguments:     json.RawMessage(`{"bogus":true}`),
	})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrInvalidArguments, r.Error.Kind)
	require.Zero(t, calls.Load(), "handler must not run on invalid arguments")
}

func TestDispatchDropsMissingAndDuplicateCorrelationIDs(t *testing.T) {
	block := make(chan struct{})
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		<-block
		return nil, nil
	}, plainContract(testCap), nil, time.Second)

	d.Dispatch(context.Background(), CallRequest{Capability: testCap})
	sink.expectNoResult(t, 50*time.Millisecond)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "dup", Capability: testCap})
	d.Dispatch(context.Background(), CallRequest{CorrelationID: "dup", Capability: testCap})
	require.Equal(t, 1, d.PendingCount())

	close(block)
	sink.waitResult(t)
	sink.expectNoResult(t, 50*time.Millisecond)
}

func TestDispatchTimeoutThenLateResultDiscarded(t *testing.T) {
	done := make(chan struct{})
	d, sink := testDispatcher(t, func(ctx context.Context, _ json.RawMessage) (any, error) {
		<-done
		return entity.ClipboardReadResult{Text: "late"}, nil
	}, plainContract(testCap), nil, 30*time.Millisecond)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "slow", Capability: testCap})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrTimeout, r.Error.Kind)

	// The handler completes after the timeout fired; nothing else may surface.
	close(done)
	sink.expectNoResult(t, 100*time.Millisecond)
	require.Zero(t, d.PendingCount())
}

func TestDispatchHandlerPanicBecomesOperationFailed(t *testing.T) {
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		panic("adapter exploded")
	}, plainContract(testCap), nil, time.Second)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "boom", Capability: testCap})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrOperationFailed, r.Error.Kind)
}

func TestDispatchAfterDisposeFailsWithBridgeDisposed(t *testing.T) {
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	}, plainContract(testCap), nil, time.Second)

	d.Dispose()
	d.Dispatch(context.Background(), CallRequest{CorrelationID: "c1", Capability: testCap})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrBridgeDisposed, r.Error.Kind)
}

func TestDispatchGatedDeniedNeverReachesHandler(t *testing.T) {
	contract := plainContract("notification.show")
	contract.RequiredPermission = entity.PermissionNotifications

	gate := permission.NewGate(permission.Options{
		Prompter: permission.PrompterFunc(func(context.Context, string, entity.PermissionKind) (entity.PermissionState, error) {
			return entity.PermissionDenied, nil
		}),
	})

	var calls atomic.Int32
	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		calls.Add(1)
		return nil, nil
	}, contract, gate, time.Second)

	d.Dispatch(context.Background(), CallRequest{CorrelationID: "c1", Capability: "notification.show"})

	r := sink.waitResult(t)
	require.False(t, r.OK)
	require.Equal(t, ErrPermissionDenied, r.Error.Kind)
	require.Zero(t, calls.Load(), "denied permission must short-circuit before the adapter")

	// A second call must not re-prompt; denial is sticky.
	d.Dispatch(context.Background(), CallRequest{CorrelationID: "c2", Capability: "notification.show"})
	r = sink.waitResult(t)
	require.Equal(t, ErrPermissionDenied, r.Error.Kind)
}

func TestDispatchGatedGrantedRunsHandler(t *testing.T) {
	contract := plainContract("notification.show")
	contract.RequiredPermission = entity.PermissionNotifications

	var prompts atomic.Int32
	gate := permission.NewGate(permission.Options{
		Prompter: permission.PrompterFunc(func(context.Context, string, entity.PermissionKind) (entity.PermissionState, error) {
			prompts.Add(1)
			return entity.PermissionGranted, nil
		}),
	})

	d, sink := testDispatcher(t, func(context.Context, json.RawMessage) (any, error) {
		return nil, nil
	}, contract, gate, time.Second)

	for _, id := range []string{"c1", "c2"} {
		d.Dispatch(context.Background(), CallRequest{CorrelationID: id, Capability: "notification.show"})
		r := sink.waitResult(t)
		require.True(t, r.OK)
	}
	require.Equal(t, int32(1), prompts.Load(), "granted state must be reused, not re-prompted")
}
