// Package platform defines the adapter surface one OS family implements to
// back the capability bridge.
package platform

import (
	"context"
	"encoding/json"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// Invoker performs a one-shot capability operation. The returned value is
// serialized as the call's success payload; an error is mapped to a failure
// outcome by the dispatcher.
type Invoker func(ctx context.Context, args json.RawMessage) (any, error)

// EventFunc receives events from a watch-style operation.
type EventFunc func(payload any)

// CancelFunc stops a watch delivery. It must be idempotent.
type CancelFunc func()

// Watcher starts a continuous capability stream. Events flow to emit until
// the returned cancel runs; emit must not be called after cancellation.
type Watcher func(ctx context.Context, args json.RawMessage, emit EventFunc) (CancelFunc, error)

// AdapterSet is one OS family's implementation of the capability surface.
// A capability missing from the set is structurally unavailable on that
// family; whether that surfaces as capability_unavailable or a graceful no-op
// is decided by the contract table at registration time, never per call.
type AdapterSet interface {
	// Family identifies the OS family this set serves.
	Family() entity.OSFamily

	// Invoker returns the one-shot operation for a capability, if implemented.
	Invoker(name entity.CapabilityName) (Invoker, bool)

	// Watcher returns the watch operation for a capability, if implemented.
	Watcher(name entity.CapabilityName) (Watcher, bool)

	// Close releases OS resources held by the set (bus connections etc.).
	Close() error
}

// NoopInvoker returns a graceful no-op success. Used where a capability is
// declared supported but the hardware concept does not exist on the family
// (haptics on a desktop target).
func NoopInvoker(result any) Invoker {
	return func(context.Context, json.RawMessage) (any, error) {
		return result, nil
	}
}
