package entity

// Wire payload shapes for capability arguments and results. These cross the
// trust boundary as JSON; field names follow the script-side conventions the
// facade exposes, not Go naming.

// ClipboardWriteArgs carries text to place on the host clipboard.
type ClipboardWriteArgs struct {
	Text string `json:"text"`
}

// ClipboardReadResult returns the current host clipboard text.
type ClipboardReadResult struct {
	Text string `json:"text"`
}

// ShareArgs mirrors the Web Share API payload. At least one field must be set.
type ShareArgs struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
}

// NotificationShowArgs describes a notification to present.
type NotificationShowArgs struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// PermissionStateResult reports a resolved permission state to script content.
type PermissionStateResult struct {
	State PermissionState `json:"state"`
}

// GeolocationOptions mirrors the PositionOptions shape of the Geolocation API.
type GeolocationOptions struct {
	EnableHighAccuracy bool `json:"enableHighAccuracy,omitempty"`
	TimeoutMs          int  `json:"timeout,omitempty"`
	MaximumAgeMs       int  `json:"maximumAge,omitempty"`
}

// Position is a single geolocation fix.
type Position struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	AccuracyMeters float64  `json:"accuracy"`
	AltitudeMeters *float64 `json:"altitude,omitempty"`
	SpeedMPS       *float64 `json:"speed,omitempty"`
	HeadingDeg     *float64 `json:"heading,omitempty"`
	TimestampMs    int64    `json:"timestamp"`
}

// WatchHandle returns the opaque id of a started subscription.
type WatchHandle struct {
	WatchID string `json:"watchId"`
}

// ClearWatchArgs cancels a position subscription by id.
type ClearWatchArgs struct {
	WatchID string `json:"watchId"`
}

// VibrateArgs carries a vibration pattern of alternating on/off milliseconds.
type VibrateArgs struct {
	Pattern []int `json:"pattern"`
}

// BatteryStatus mirrors the Battery Status API shape.
type BatteryStatus struct {
	Charging bool    `json:"charging"`
	Level    float64 `json:"level"` // 0.0 .. 1.0
}

// NetworkStatus reports host connectivity.
type NetworkStatus struct {
	Online bool   `json:"online"`
	Type   string `json:"type"` // "wifi", "ethernet", "cellular", "none", "unknown"
}

// OrientationLockArgs requests a screen orientation lock.
type OrientationLockArgs struct {
	Orientation string `json:"orientation"`
}

// OrientationStatus reports the current screen orientation.
type OrientationStatus struct {
	Type  string `json:"type"` // e.g. "landscape-primary"
	Angle int    `json:"angle"`
}

// OrientationTypes lists the lockable orientation values from the
// Screen Orientation API.
func OrientationTypes() []string {
	return []string{
		"any",
		"natural",
		"landscape",
		"portrait",
		"portrait-primary",
		"portrait-secondary",
		"landscape-primary",
		"landscape-secondary",
	}
}
