// Package linuxhost implements the capability adapter set for desktop Linux.
// Clipboard access shells out to the Wayland/X11 helper tools, everything else
// rides the D-Bus session and system buses (notifications, UPower,
// NetworkManager, GeoClue2, the OpenURI portal).
package linuxhost

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/logging"
	"github.com/titanbrowser/capbridge/internal/platform"
)

// Host is the Linux adapter set. Construction probes the environment once;
// capabilities whose backing service is missing are simply not offered, so
// the registry marks them unavailable up front instead of failing per call.
type Host struct {
	session *dbus.Conn
	system  *dbus.Conn

	clipboardOK bool
	appID       string
}

// Options configures the Linux host probe.
type Options struct {
	// AppID is the desktop id reported to GeoClue2 and the notification
	// daemon.
	AppID string
}

// New probes the session and system buses and the clipboard helpers. It never
// fails; a host with nothing available is a valid (empty) adapter set.
func New(ctx context.Context, opts Options) *Host {
	log := logging.FromContext(ctx).With().Str("component", "linuxhost").Logger()

	h := &Host{appID: opts.AppID}
	if h.appID == "" {
		h.appID = "com.titanbrowser.capbridge"
	}

	if conn, err := dbus.ConnectSessionBus(); err != nil {
		log.Debug().Err(err).Msg("session bus unavailable")
	} else {
		h.session = conn
	}

	if conn, err := dbus.ConnectSystemBus(); err != nil {
		log.Debug().Err(err).Msg("system bus unavailable")
	} else {
		h.system = conn
	}

	h.clipboardOK = clipboardToolsPresent()
	if !h.clipboardOK {
		log.Debug().Msg("no clipboard helper found, clipboard capabilities disabled")
	}

	return h
}

// Family implements platform.AdapterSet.
func (h *Host) Family() entity.OSFamily {
	return entity.FamilyLinux
}

// Invoker implements platform.AdapterSet.
func (h *Host) Invoker(name entity.CapabilityName) (platform.Invoker, bool) {
	switch name {
	case entity.CapClipboardWrite:
		if h.clipboardOK {
			return h.clipboardWrite, true
		}
	case entity.CapClipboardRead:
		if h.clipboardOK {
			return h.clipboardRead, true
		}
	case entity.CapShare:
		if h.session != nil {
			return h.share, true
		}
	case entity.CapNotificationShow:
		if h.session != nil {
			return h.notificationShow, true
		}
	case entity.CapGeolocationGetCurrentPosition:
		if h.system != nil {
			return h.currentPosition, true
		}
	case entity.CapVibrate:
		// Desktops have no haptics; the call succeeds and does nothing.
		return platform.NoopInvoker(nil), true
	case entity.CapBatteryGet:
		if h.system != nil {
			return h.batteryGet, true
		}
	case entity.CapNetworkGet:
		if h.system != nil {
			return h.networkGet, true
		}
	case entity.CapScreenOrientationGet:
		// Desktop sessions report a fixed landscape surface. Locking is not
		// offered, so lock and unlock register as unavailable.
		return platform.NoopInvoker(entity.OrientationStatus{Type: "landscape-primary", Angle: 0}), true
	}
	return nil, false
}

// Watcher implements platform.AdapterSet.
func (h *Host) Watcher(name entity.CapabilityName) (platform.Watcher, bool) {
	if name == entity.CapGeolocationWatchPosition && h.system != nil {
		return h.watchPosition, true
	}
	return nil, false
}

// Close implements platform.AdapterSet.
func (h *Host) Close() error {
	var first error
	if h.session != nil {
		if err := h.session.Close(); err != nil {
			first = err
		}
		h.session = nil
	}
	if h.system != nil {
		if err := h.system.Close(); err != nil && first == nil {
			first = err
		}
		h.system = nil
	}
	return first
}
