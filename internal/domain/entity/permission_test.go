package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissionStateValidity(t *testing.T) {
	for _, s := range []PermissionState{
		PermissionNotDetermined,
		PermissionGranted,
		PermissionDenied,
		PermissionRestricted,
	} {
		require.True(t, s.Valid(), "%s should be valid", s)
	}
	require.False(t, PermissionState("prompt").Valid())
	require.False(t, PermissionState("").Valid())
}

func TestTerminalStatesBlockWithoutPrompting(t *testing.T) {
	require.True(t, PermissionDenied.IsTerminal())
	require.True(t, PermissionRestricted.IsTerminal())
	require.False(t, PermissionGranted.IsTerminal())
	require.False(t, PermissionNotDetermined.IsTerminal())
}

func TestPermissionRecordPredicates(t *testing.T) {
	rec := PermissionRecord{Origin: "https://example.com", Kind: PermissionLocation, State: PermissionGranted}
	require.True(t, rec.IsGranted())
	require.False(t, rec.IsDenied())

	rec.State = PermissionDenied
	require.False(t, rec.IsGranted())
	require.True(t, rec.IsDenied())
}
