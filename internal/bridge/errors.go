package bridge

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a capability call failure. Kinds cross the trust
// boundary verbatim, so the values are wire-stable.
type ErrorKind string

const (
	// ErrUnknownCapability is returned for a capability name outside the
	// registered set. A caller bug; never reaches the permission gate.
	ErrUnknownCapability ErrorKind = "unknown_capability"

	// ErrInvalidArguments is returned when arguments fail schema validation.
	// Checked before any permission work.
	ErrInvalidArguments ErrorKind = "invalid_arguments"

	// ErrPermissionDenied is returned for gated calls whose permission is
	// denied or restricted. Terminal for the call; never auto-retried.
	ErrPermissionDenied ErrorKind = "permission_denied"

	// ErrCapabilityUnavailable is returned when the running platform lacks
	// the capability. Not retryable.
	ErrCapabilityUnavailable ErrorKind = "capability_unavailable"

	// ErrOperationFailed is returned when the underlying OS call failed, and
	// for any fault the dispatcher recovers at its boundary.
	ErrOperationFailed ErrorKind = "operation_failed"

	// ErrTimeout is returned when a one-shot call outlives its deadline.
	ErrTimeout ErrorKind = "timeout"

	// ErrBridgeDisposed is returned for calls arriving after the owning
	// bridge instance began teardown.
	ErrBridgeDisposed ErrorKind = "bridge_disposed"

	// ErrDuplicateCapability is a registration-time error only; it never
	// crosses the boundary.
	ErrDuplicateCapability ErrorKind = "duplicate_capability"
)

// Error is a classified bridge error.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches two bridge errors by kind, so errors.Is(err, &Error{Kind: k})
// style sentinels work in tests.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError builds a classified error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error, preserving it for unwrapping.
func WrapError(kind ErrorKind, err error) *Error {
	if err == nil {
		return &Error{Kind: kind}
	}
	return &Error{Kind: kind, Message: err.Error(), cause: err}
}

// KindOf extracts the kind from err, defaulting to operation_failed for
// unclassified adapter errors.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ErrOperationFailed
}
