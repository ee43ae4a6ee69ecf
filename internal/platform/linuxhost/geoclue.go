package linuxhost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/platform"
)

const (
	geoclueDest         = "org.freedesktop.GeoClue2"
	geoclueManagerPath  = "/org/freedesktop/GeoClue2/Manager"
	geoclueManagerIface = "org.freedesktop.GeoClue2.Manager"
	geoclueClientIface  = "org.freedesktop.GeoClue2.Client"
	geoclueLocIface     = "org.freedesktop.GeoClue2.Location"

	// GClueAccuracyLevel values.
	geoclueAccuracyCity  = 4
	geoclueAccuracyExact = 8
)

// geoclueClient is one GeoClue2 client session: a client object on the system
// bus with LocationUpdated signals routed to a Go channel.
type geoclueClient struct {
	conn    *dbus.Conn
	path    dbus.ObjectPath
	signals chan *dbus.Signal
}

func (h *Host) newGeoclueClient(highAccuracy bool) (*geoclueClient, error) {
	manager := h.system.Object(geoclueDest, geoclueManagerPath)

	var clientPath dbus.ObjectPath
	if err := manager.Call(geoclueManagerIface+".GetClient", 0).Store(&clientPath); err != nil {
		return nil, fmt.Errorf("geoclue: get client: %w", err)
	}

	client := h.system.Object(geoclueDest, clientPath)

	if err := client.SetProperty(geoclueClientIface+".DesktopId", dbus.MakeVariant(h.appID)); err != nil {
		return nil, fmt.Errorf("geoclue: set desktop id: %w", err)
	}

	level := uint32(geoclueAccuracyCity)
	if highAccuracy {
		level = geoclueAccuracyExact
	}
	if err := client.SetProperty(geoclueClientIface+".RequestedAccuracyLevel", dbus.MakeVariant(level)); err != nil {
		return nil, fmt.Errorf("geoclue: set accuracy: %w", err)
	}

	matchRule := fmt.Sprintf(
		"type='signal',interface='%s',member='LocationUpdated',path='%s'",
		geoclueClientIface, clientPath,
	)
	if err := h.system.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, matchRule).Err; err != nil {
		return nil, fmt.Errorf("geoclue: add match: %w", err)
	}

	signals := make(chan *dbus.Signal, 4)
	h.system.Signal(signals)

	if err := client.Call(geoclueClientIface+".Start", 0).Err; err != nil {
		h.system.RemoveSignal(signals)
		_ = h.system.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule).Err
		return nil, fmt.Errorf("geoclue: start: %w", err)
	}

	return &geoclueClient{conn: h.system, path: clientPath, signals: signals}, nil
}

func (c *geoclueClient) stop() {
	client := c.conn.Object(geoclueDest, c.path)
	_ = client.Call(geoclueClientIface+".Stop", 0).Err

	matchRule := fmt.Sprintf(
		"type='signal',interface='%s',member='LocationUpdated',path='%s'",
		geoclueClientIface, c.path,
	)
	_ = c.conn.BusObject().Call("org.freedesktop.DBus.RemoveMatch", 0, matchRule).Err
	c.conn.RemoveSignal(c.signals)
}

// readFix resolves a LocationUpdated signal into a position by reading the
// new location object's properties.
func (c *geoclueClient) readFix(sig *dbus.Signal) (entity.Position, bool) {
	if sig == nil || sig.Name != geoclueClientIface+".LocationUpdated" || sig.Path != c.path {
		return entity.Position{}, false
	}
	if len(sig.Body) < 2 {
		return entity.Position{}, false
	}
	newPath, ok := sig.Body[1].(dbus.ObjectPath)
	if !ok {
		return entity.Position{}, false
	}

	loc := c.conn.Object(geoclueDest, newPath)

	read := func(prop string) (float64, bool) {
		var v float64
		if err := loc.Call(propsGetMethod, 0, geoclueLocIface, prop).Store(&v); err != nil {
			return 0, false
		}
		return v, true
	}

	lat, ok1 := read("Latitude")
	lon, ok2 := read("Longitude")
	if !ok1 || !ok2 {
		return entity.Position{}, false
	}

	pos := entity.Position{
		Latitude:    lat,
		Longitude:   lon,
		TimestampMs: time.Now().UnixMilli(),
	}
	if acc, ok := read("Accuracy"); ok {
		pos.AccuracyMeters = acc
	}
	if alt, ok := read("Altitude"); ok && alt > -1e9 {
		pos.AltitudeMeters = &alt
	}
	if spd, ok := read("Speed"); ok && spd >= 0 {
		pos.SpeedMPS = &spd
	}
	if hdg, ok := read("Heading"); ok && hdg >= 0 {
		pos.HeadingDeg = &hdg
	}
	return pos, true
}

// currentPosition starts a short-lived GeoClue2 session and waits for the
// first fix. The call deadline set by the dispatcher bounds the wait.
func (h *Host) currentPosition(ctx context.Context, args json.RawMessage) (any, error) {
	var opts entity.GeolocationOptions
	if len(args) > 0 {
		_ = json.Unmarshal(args, &opts)
	}

	client, err := h.newGeoclueClient(opts.EnableHighAccuracy)
	if err != nil {
		return nil, err
	}
	defer client.stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sig := <-client.signals:
			if pos, ok := client.readFix(sig); ok {
				return pos, nil
			}
		}
	}
}

// watchPosition keeps a GeoClue2 session open and forwards every fix until
// cancelled.
func (h *Host) watchPosition(ctx context.Context, args json.RawMessage, emit platform.EventFunc) (platform.CancelFunc, error) {
	var opts entity.GeolocationOptions
	if len(args) > 0 {
		_ = json.Unmarshal(args, &opts)
	}

	client, err := h.newGeoclueClient(opts.EnableHighAccuracy)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			client.stop()
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				cancel()
				return
			case sig := <-client.signals:
				if pos, ok := client.readFix(sig); ok {
					select {
					case <-done:
						return
					default:
						emit(pos)
					}
				}
			}
		}
	}()

	return cancel, nil
}
