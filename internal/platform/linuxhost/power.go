package linuxhost

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

const (
	upowerDest        = "org.freedesktop.UPower"
	upowerDisplayPath = "/org/freedesktop/UPower/devices/DisplayDevice"
	upowerDeviceIface = "org.freedesktop.UPower.Device"

	nmDest         = "org.freedesktop.NetworkManager"
	nmPath         = "/org/freedesktop/NetworkManager"
	nmIface        = "org.freedesktop.NetworkManager"
	propsGetMethod = "org.freedesktop.DBus.Properties.Get"
)

// UPower device State values.
const (
	upowerStateCharging     = 1
	upowerStateFullyCharged = 4
)

// NetworkManager NMState values.
const (
	nmStateConnectedLocal  = 50
	nmStateConnectedGlobal = 70
)

// NetworkManager NMDeviceType values for the primary connection.
const (
	nmDeviceEthernet = 1
	nmDeviceWifi     = 2
	nmDeviceModem    = 8
)

// batteryGet reads the UPower composite display device. Desktops without a
// battery report fully charged on mains, which maps to charging at level 1.
func (h *Host) batteryGet(_ context.Context, _ json.RawMessage) (any, error) {
	obj := h.system.Object(upowerDest, upowerDisplayPath)

	var percentage float64
	if err := obj.Call(propsGetMethod, 0, upowerDeviceIface, "Percentage").Store(&percentage); err != nil {
		return nil, fmt.Errorf("upower: %w", err)
	}

	var state uint32
	if err := obj.Call(propsGetMethod, 0, upowerDeviceIface, "State").Store(&state); err != nil {
		return nil, fmt.Errorf("upower: %w", err)
	}

	var isPresent bool
	_ = obj.Call(propsGetMethod, 0, upowerDeviceIface, "IsPresent").Store(&isPresent)
	if !isPresent {
		return entity.BatteryStatus{Charging: true, Level: 1}, nil
	}

	return entity.BatteryStatus{
		Charging: state == upowerStateCharging || state == upowerStateFullyCharged,
		Level:    percentage / 100,
	}, nil
}

// networkGet maps NetworkManager's global state and primary device type onto
// the Network Information API vocabulary.
func (h *Host) networkGet(_ context.Context, _ json.RawMessage) (any, error) {
	obj := h.system.Object(nmDest, nmPath)

	var state uint32
	if err := obj.Call(propsGetMethod, 0, nmIface, "State").Store(&state); err != nil {
		return nil, fmt.Errorf("networkmanager: %w", err)
	}

	if state < nmStateConnectedLocal {
		return entity.NetworkStatus{Online: false, Type: "none"}, nil
	}

	return entity.NetworkStatus{Online: true, Type: h.primaryLinkType()}, nil
}

func (h *Host) primaryLinkType() string {
	obj := h.system.Object(nmDest, nmPath)

	var primaryPath dbus.ObjectPath
	if err := obj.Call(propsGetMethod, 0, nmIface, "PrimaryConnection").Store(&primaryPath); err != nil || primaryPath == "/" {
		return "unknown"
	}

	activeObj := h.system.Object(nmDest, primaryPath)
	var devicePaths []dbus.ObjectPath
	if err := activeObj.Call(propsGetMethod, 0, "org.freedesktop.NetworkManager.Connection.Active", "Devices").Store(&devicePaths); err != nil || len(devicePaths) == 0 {
		return "unknown"
	}

	devObj := h.system.Object(nmDest, devicePaths[0])
	var devType uint32
	if err := devObj.Call(propsGetMethod, 0, "org.freedesktop.NetworkManager.Device", "DeviceType").Store(&devType); err != nil {
		return "unknown"
	}

	switch devType {
	case nmDeviceEthernet:
		return "ethernet"
	case nmDeviceWifi:
		return "wifi"
	case nmDeviceModem:
		return "cellular"
	default:
		return "unknown"
	}
}
