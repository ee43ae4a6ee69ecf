package entity

// PermissionKind represents an OS-level permission gating a capability.
type PermissionKind string

const (
	// PermissionLocation gates geolocation capabilities.
	PermissionLocation PermissionKind = "location"

	// PermissionNotifications gates notification delivery.
	PermissionNotifications PermissionKind = "notifications"
)

// PermissionState represents the current state of a permission.
type PermissionState string

const (
	// PermissionNotDetermined means no decision has been made yet (default state).
	PermissionNotDetermined PermissionState = "not_determined"

	// PermissionGranted means the permission was allowed.
	PermissionGranted PermissionState = "granted"

	// PermissionDenied means the permission was denied.
	PermissionDenied PermissionState = "denied"

	// PermissionRestricted means OS policy forbids the permission and the
	// user cannot change it (parental controls, MDM profiles).
	PermissionRestricted PermissionState = "restricted"
)

// IsTerminal reports whether the state blocks a gated call without prompting.
// Denied transitions back to granted only through an OS-level change observed
// on a later read, never through a bridge-initiated re-prompt.
func (s PermissionState) IsTerminal() bool {
	return s == PermissionDenied || s == PermissionRestricted
}

// Valid reports whether s is one of the known permission states.
func (s PermissionState) Valid() bool {
	switch s {
	case PermissionNotDetermined, PermissionGranted, PermissionDenied, PermissionRestricted:
		return true
	}
	return false
}

// PermissionRecord stores a permission state for a specific origin and kind.
type PermissionRecord struct {
	Origin    string          // The origin (domain) this permission applies to
	Kind      PermissionKind  // The kind of permission
	State     PermissionState // The resolved state
	UpdatedAt int64           // Unix timestamp in seconds when this record was last updated
}

// IsGranted returns true if the permission is granted.
func (p *PermissionRecord) IsGranted() bool {
	return p.State == PermissionGranted
}

// IsDenied returns true if the permission is denied.
func (p *PermissionRecord) IsDenied() bool {
	return p.State == PermissionDenied
}
