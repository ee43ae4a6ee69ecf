package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/logging"
	"github.com/titanbrowser/capbridge/internal/permission"
)

// Dispatcher receives inbound calls, applies the permission gate, runs the
// registered handler and delivers exactly one correlated result per request.
// The caller never blocks: permission prompts and adapter calls run on their
// own goroutine and the result surfaces later through the sink.
type Dispatcher struct {
	registry *Registry
	gate     *permission.Gate
	origin   string
	sink     ResultSink
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]struct{}

	disposed atomic.Bool
}

// NewDispatcher creates a dispatcher for one bridge instance.
func NewDispatcher(registry *Registry, gate *permission.Gate, origin string, sink ResultSink, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		gate:     gate,
		origin:   origin,
		sink:     sink,
		timeout:  timeout,
		pending:  make(map[string]struct{}),
	}
}

// Dispatch processes one call request. Cheap failures (unknown capability,
// invalid arguments) resolve synchronously; everything else continues on a
// worker goroutine. Every accepted request produces exactly one CallResult.
func (d *Dispatcher) Dispatch(ctx context.Context, req CallRequest) {
	log := logging.FromContext(ctx)

	if req.CorrelationID == "" {
		log.Warn().Str("capability", string(req.Capability)).Msg("dropping call without correlation id")
		return
	}

	d.mu.Lock()
	if _, dup := d.pending[req.CorrelationID]; dup {
		d.mu.Unlock()
		log.Warn().Str("correlation_id", req.CorrelationID).Msg("dropping call with duplicate correlation id")
		return
	}
	d.pending[req.CorrelationID] = struct{}{}
	d.mu.Unlock()

	if d.disposed.Load() {
		d.deliver(ctx, FailureResult(req.CorrelationID, NewError(ErrBridgeDisposed, "bridge is tearing down")))
		return
	}

	reg, err := d.registry.Resolve(req.Capability)
	if err != nil {
		d.deliver(ctx, FailureResult(req.CorrelationID, err))
		return
	}

	// Argument validation is cheaper than a permission round-trip, so caller
	// bugs fail before the gate is touched.
	if reg.Contract.Validate != nil {
		if err := reg.Contract.Validate(req.Arguments); err != nil {
			d.deliver(ctx, FailureResult(req.CorrelationID, err))
			return
		}
	}

	go d.run(ctx, reg, req)
}

func (d *Dispatcher) run(ctx context.Context, reg Registration, req CallRequest) {
	log := logging.FromContext(ctx)

	if reg.Contract.Gated() {
		state := d.gate.Check(ctx, d.origin, reg.Contract.RequiredPermission)
		if state == entity.PermissionNotDetermined {
			var err error
			state, err = d.gate.Request(ctx, d.origin, reg.Contract.RequiredPermission)
			if err != nil {
				d.deliver(ctx, FailureResult(req.CorrelationID,
					NewError(ErrPermissionDenied, "permission %s could not be resolved: %v", reg.Contract.RequiredPermission, err)))
				return
			}
		}
		if state != entity.PermissionGranted {
			d.deliver(ctx, FailureResult(req.CorrelationID,
				NewError(ErrPermissionDenied, "permission %s is %s", reg.Contract.RequiredPermission, state)))
			return
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			// A panicking handler must never take the host process down; it
			// surfaces as operation_failed like any other adapter fault.
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("capability", string(req.Capability)).Msg("capability handler panicked")
				done <- outcome{err: NewError(ErrOperationFailed, "internal fault in %s", req.Capability)}
			}
		}()
		value, err := reg.Handler(callCtx, req.Arguments)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			d.deliver(ctx, FailureResult(req.CorrelationID, classify(out.err)))
			return
		}
		d.deliver(ctx, SuccessResult(req.CorrelationID, out.value))
	case <-callCtx.Done():
		// The handler may still complete; the pending table drops that late
		// result so at-most-one delivery holds.
		d.deliver(ctx, FailureResult(req.CorrelationID,
			NewError(ErrTimeout, "%s did not complete within %s", req.Capability, d.timeout)))
		go func() {
			if out := <-done; out.err == nil {
				log.Debug().Str("correlation_id", req.CorrelationID).Msg("late result after timeout discarded")
			}
		}()
	}
}

// classify wraps unclassified adapter errors as operation_failed.
func classify(err error) error {
	var be *Error
	if errors.As(err, &be) {
		return err
	}
	return WrapError(ErrOperationFailed, err)
}

// deliver sends the result if its correlation id is still pending. Exactly one
// delivery happens per id; anything after the first (a late completion beaten
// by a timeout) is discarded.
func (d *Dispatcher) deliver(ctx context.Context, result CallResult) {
	log := logging.FromContext(ctx)

	d.mu.Lock()
	_, ok := d.pending[result.CorrelationID]
	if ok {
		delete(d.pending, result.CorrelationID)
	}
	d.mu.Unlock()

	if !ok {
		log.Debug().Str("correlation_id", result.CorrelationID).Msg("duplicate result discarded")
		return
	}

	// After teardown begins, the only result still worth surfacing is the
	// bridge_disposed failure itself; in-flight completions go nowhere.
	disposedNotice := result.Error != nil && result.Error.Kind == ErrBridgeDisposed
	if d.disposed.Load() && !disposedNotice {
		log.Debug().Str("correlation_id", result.CorrelationID).Msg("result after teardown discarded")
		return
	}

	d.sink.DeliverResult(ctx, result)
}

// Dispose marks the dispatcher as tearing down. Calls already past the gate
// finish into the pending table; new calls fail with bridge_disposed.
func (d *Dispatcher) Dispose() {
	d.disposed.Store(true)
}

// PendingCount returns the number of calls awaiting a result.
func (d *Dispatcher) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
