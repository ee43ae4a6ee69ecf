package entity

// CapabilityName identifies a single host operation exposed across the trust
// boundary. The set is fixed at build time; a bridge instance never learns new
// capabilities after construction.
type CapabilityName string

const (
	CapClipboardWrite CapabilityName = "clipboard.write"
	CapClipboardRead  CapabilityName = "clipboard.read"
	CapShare          CapabilityName = "share"

	CapNotificationRequestPermission CapabilityName = "notification.requestPermission"
	CapNotificationShow              CapabilityName = "notification.show"

	CapGeolocationGetCurrentPosition CapabilityName = "geolocation.getCurrentPosition"
	CapGeolocationWatchPosition      CapabilityName = "geolocation.watchPosition"
	CapGeolocationClearWatch         CapabilityName = "geolocation.clearWatch"

	CapVibrate    CapabilityName = "vibrate"
	CapBatteryGet CapabilityName = "battery.get"
	CapNetworkGet CapabilityName = "network.get"

	CapScreenOrientationLock   CapabilityName = "screenOrientation.lock"
	CapScreenOrientationUnlock CapabilityName = "screenOrientation.unlock"
	CapScreenOrientationGet    CapabilityName = "screenOrientation.get"
)

// AllCapabilities returns the fixed capability set in a stable order.
func AllCapabilities() []CapabilityName {
	return []CapabilityName{
		CapClipboardWrite,
		CapClipboardRead,
		CapShare,
		CapNotificationRequestPermission,
		CapNotificationShow,
		CapGeolocationGetCurrentPosition,
		CapGeolocationWatchPosition,
		CapGeolocationClearWatch,
		CapVibrate,
		CapBatteryGet,
		CapNetworkGet,
		CapScreenOrientationLock,
		CapScreenOrientationUnlock,
		CapScreenOrientationGet,
	}
}

// OSFamily identifies an adapter implementation family.
type OSFamily string

const (
	// FamilyLinux covers desktop Linux (D-Bus session services, Wayland/X11 clipboards).
	FamilyLinux OSFamily = "linux"

	// FamilyDarwin covers macOS hosts.
	FamilyDarwin OSFamily = "darwin"

	// FamilySim is the deterministic in-memory family used by tests and the demo console.
	FamilySim OSFamily = "sim"
)
