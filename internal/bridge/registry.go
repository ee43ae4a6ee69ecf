package bridge

import (
	"context"
	"encoding/json"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// Handler executes one capability call with validated arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registration binds one contract to its handler.
type Registration struct {
	Contract Contract
	Handler  Handler
}

// Registry maps capability names to registrations. It is populated once at
// bridge construction and read-only afterwards, so lookups take no lock.
type Registry struct {
	entries map[entity.CapabilityName]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[entity.CapabilityName]Registration)}
}

// Register binds a contract to a handler. Fails with duplicate_capability if
// the contract name is already registered.
func (r *Registry) Register(contract Contract, handler Handler) error {
	if contract.Name == "" {
		return NewError(ErrInvalidArguments, "contract name cannot be empty")
	}
	if handler == nil {
		return NewError(ErrInvalidArguments, "handler cannot be nil for %s", contract.Name)
	}
	if _, exists := r.entries[contract.Name]; exists {
		return NewError(ErrDuplicateCapability, "capability %s already registered", contract.Name)
	}
	r.entries[contract.Name] = Registration{Contract: contract, Handler: handler}
	return nil
}

// Resolve returns the registration for name, or unknown_capability.
func (r *Registry) Resolve(name entity.CapabilityName) (Registration, error) {
	reg, ok := r.entries[name]
	if !ok {
		return Registration{}, NewError(ErrUnknownCapability, "no capability named %q", name)
	}
	return reg, nil
}

// Len returns the number of registered capabilities.
func (r *Registry) Len() int {
	return len(r.entries)
}
