package bridge

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// CallKind distinguishes one-shot operations from watch-style subscriptions.
type CallKind int

const (
	// KindOneShot calls resolve with exactly one result.
	KindOneShot CallKind = iota
	// KindWatch calls start a subscription and resolve with its handle.
	KindWatch
	// KindWatchCancel calls cancel a subscription by handle.
	KindWatchCancel
)

// ValidateFunc checks raw call arguments before any permission work.
type ValidateFunc func(raw json.RawMessage) error

// Contract is the immutable description of one capability: its name, the
// permission it needs, the OS families that can serve it, and the shapes it
// exchanges. Defined once at startup; a bridge instance never mutates it.
type Contract struct {
	Name               entity.CapabilityName
	RequiredPermission entity.PermissionKind // "" for ungated capabilities
	Platforms          []entity.OSFamily
	Kind               CallKind

	// Args and Result are prototype values describing the wire shapes; nil
	// when the side carries no payload. Used for schema output, not dispatch.
	Args   any
	Result any

	Validate ValidateFunc
}

// SupportsFamily reports whether family is in the contract's support set.
func (c Contract) SupportsFamily(family entity.OSFamily) bool {
	return slices.Contains(c.Platforms, family)
}

// Gated reports whether the contract declares a required permission.
func (c Contract) Gated() bool {
	return c.RequiredPermission != ""
}

func decodeStrict(raw json.RawMessage, into any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func validateClipboardWrite(raw json.RawMessage) error {
	var args entity.ClipboardWriteArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "clipboard.write: %v", err)
	}
	return nil
}

func validateNoArgs(name entity.CapabilityName) ValidateFunc {
	return func(raw json.RawMessage) error {
		if len(raw) == 0 {
			return nil
		}
		trimmed := strings.TrimSpace(string(raw))
		if trimmed == "null" || trimmed == "{}" {
			return nil
		}
		return NewError(ErrInvalidArguments, "%s takes no arguments", name)
	}
}

func validateShare(raw json.RawMessage) error {
	var args entity.ShareArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "share: %v", err)
	}
	if args.Title == "" && args.Text == "" && args.URL == "" {
		return NewError(ErrInvalidArguments, "share requires at least one of title, text, url")
	}
	return nil
}

func validateNotificationShow(raw json.RawMessage) error {
	var args entity.NotificationShowArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "notification.show: %v", err)
	}
	if args.Title == "" {
		return NewError(ErrInvalidArguments, "notification.show requires a title")
	}
	return nil
}

func validateGeolocationOptions(name entity.CapabilityName) ValidateFunc {
	return func(raw json.RawMessage) error {
		var args entity.GeolocationOptions
		if err := decodeStrict(raw, &args); err != nil {
			return NewError(ErrInvalidArguments, "%s: %v", name, err)
		}
		if args.TimeoutMs < 0 || args.MaximumAgeMs < 0 {
			return NewError(ErrInvalidArguments, "%s: timeout and maximumAge must not be negative", name)
		}
		return nil
	}
}

func validateClearWatch(raw json.RawMessage) error {
	var args entity.ClearWatchArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "geolocation.clearWatch: %v", err)
	}
	if args.WatchID == "" {
		return NewError(ErrInvalidArguments, "geolocation.clearWatch requires watchId")
	}
	return nil
}

func validateVibrate(raw json.RawMessage) error {
	var args entity.VibrateArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "vibrate: %v", err)
	}
	if len(args.Pattern) == 0 {
		return NewError(ErrInvalidArguments, "vibrate requires a non-empty pattern")
	}
	for _, ms := range args.Pattern {
		if ms < 0 {
			return NewError(ErrInvalidArguments, "vibrate pattern values must not be negative")
		}
	}
	return nil
}

func validateOrientationLock(raw json.RawMessage) error {
	var args entity.OrientationLockArgs
	if err := decodeStrict(raw, &args); err != nil {
		return NewError(ErrInvalidArguments, "screenOrientation.lock: %v", err)
	}
	if !slices.Contains(entity.OrientationTypes(), args.Orientation) {
		return NewError(ErrInvalidArguments, "screenOrientation.lock: unknown orientation %q", args.Orientation)
	}
	return nil
}

var desktopFamilies = []entity.OSFamily{entity.FamilyLinux, entity.FamilyDarwin, entity.FamilySim}

// Contracts returns the static capability contract table. The table is the
// single authority for permission requirements and platform support; the
// bridge builds its registry from it once per instance.
func Contracts() []Contract {
	return []Contract{
		{
			Name:      entity.CapClipboardWrite,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Args:      entity.ClipboardWriteArgs{},
			Validate:  validateClipboardWrite,
		},
		{
			Name:      entity.CapClipboardRead,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Result:    entity.ClipboardReadResult{},
			Validate:  validateNoArgs(entity.CapClipboardRead),
		},
		{
			// Desktop Linux exposes sharing through the portal OpenURI
			// surface; macOS has no share sheet reachable without cgo.
			Name:      entity.CapShare,
			Platforms: []entity.OSFamily{entity.FamilyLinux, entity.FamilySim},
			Kind:      KindOneShot,
			Args:      entity.ShareArgs{},
			Validate:  validateShare,
		},
		{
			Name:      entity.CapNotificationRequestPermission,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Result:    entity.PermissionStateResult{},
			Validate:  validateNoArgs(entity.CapNotificationRequestPermission),
		},
		{
			Name:               entity.CapNotificationShow,
			RequiredPermission: entity.PermissionNotifications,
			Platforms:          desktopFamilies,
			Kind:               KindOneShot,
			Args:               entity.NotificationShowArgs{},
			Validate:           validateNotificationShow,
		},
		{
			Name:               entity.CapGeolocationGetCurrentPosition,
			RequiredPermission: entity.PermissionLocation,
			Platforms:          []entity.OSFamily{entity.FamilyLinux, entity.FamilySim},
			Kind:               KindOneShot,
			Args:               entity.GeolocationOptions{},
			Result:             entity.Position{},
			Validate:           validateGeolocationOptions(entity.CapGeolocationGetCurrentPosition),
		},
		{
			Name:               entity.CapGeolocationWatchPosition,
			RequiredPermission: entity.PermissionLocation,
			Platforms:          []entity.OSFamily{entity.FamilyLinux, entity.FamilySim},
			Kind:               KindWatch,
			Args:               entity.GeolocationOptions{},
			Result:             entity.WatchHandle{},
			Validate:           validateGeolocationOptions(entity.CapGeolocationWatchPosition),
		},
		{
			// Cancellation is always allowed, even once permission has been
			// revoked: an id for a dead watch is a no-op, not an error.
			Name:      entity.CapGeolocationClearWatch,
			Platforms: []entity.OSFamily{entity.FamilyLinux, entity.FamilySim},
			Kind:      KindWatchCancel,
			Args:      entity.ClearWatchArgs{},
			Validate:  validateClearWatch,
		},
		{
			Name:      entity.CapVibrate,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Args:      entity.VibrateArgs{},
			Validate:  validateVibrate,
		},
		{
			Name:      entity.CapBatteryGet,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Result:    entity.BatteryStatus{},
			Validate:  validateNoArgs(entity.CapBatteryGet),
		},
		{
			Name:      entity.CapNetworkGet,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Result:    entity.NetworkStatus{},
			Validate:  validateNoArgs(entity.CapNetworkGet),
		},
		{
			Name:      entity.CapScreenOrientationLock,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Args:      entity.OrientationLockArgs{},
			Validate:  validateOrientationLock,
		},
		{
			Name:      entity.CapScreenOrientationUnlock,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Validate:  validateNoArgs(entity.CapScreenOrientationUnlock),
		},
		{
			Name:      entity.CapScreenOrientationGet,
			Platforms: desktopFamilies,
			Kind:      KindOneShot,
			Result:    entity.OrientationStatus{},
			Validate:  validateNoArgs(entity.CapScreenOrientationGet),
		},
	}
}
