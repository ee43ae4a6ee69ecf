package bridge

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

func noopHandler(context.Context, json.RawMessage) (any, error) {
	return nil, nil
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	contract := plainContract(entity.CapVibrate)

	require.NoError(t, r.Register(contract, noopHandler))
	err := r.Register(contract, noopHandler)
	require.Error(t, err)
	require.Equal(t, ErrDuplicateCapability, KindOf(err))
	require.Equal(t, 1, r.Len())
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("battery.get")
	require.Error(t, err)
	require.Equal(t, ErrUnknownCapability, KindOf(err))
}

func TestRegistryResolveReturnsRegistration(t *testing.T) {
	r := NewRegistry()
	contract := plainContract(entity.CapBatteryGet)
	require.NoError(t, r.Register(contract, noopHandler))

	reg, err := r.Resolve(entity.CapBatteryGet)
	require.NoError(t, err)
	require.Equal(t, entity.CapBatteryGet, reg.Contract.Name)
	require.NotNil(t, reg.Handler)
}

func TestContractTableIsInternallyConsistent(t *testing.T) {
	seen := map[entity.CapabilityName]bool{}
	for _, c := range Contracts() {
		require.False(t, seen[c.Name], "capability %s appears twice", c.Name)
		seen[c.Name] = true
		require.NotEmpty(t, c.Platforms, "capability %s supports no family", c.Name)
	}

	for _, name := range entity.AllCapabilities() {
		require.True(t, seen[name], "capability %s missing from contract table", name)
	}
}
