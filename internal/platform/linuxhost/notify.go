package linuxhost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = "/org/freedesktop/Notifications"
	notifyIface = "org.freedesktop.Notifications"
)

var (
	tagMu  sync.Mutex
	tagIDs = map[string]uint32{}
)

// notificationShow presents a desktop notification through the session
// notification daemon. A tag maps to the daemon's replaces_id so repeated
// shows with the same tag update one bubble instead of stacking.
func (h *Host) notificationShow(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.NotificationShowArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var replaces uint32
	if a.Tag != "" {
		tagMu.Lock()
		replaces = tagIDs[a.Tag]
		tagMu.Unlock()
	}

	obj := h.session.Object(notifyDest, notifyPath)

	var id uint32
	err := obj.Call(notifyIface+".Notify", 0,
		h.appID,                  // app_name
		replaces,                 // replaces_id
		"",                       // app_icon
		a.Title,                  // summary
		a.Body,                   // body
		[]string{},               // actions
		map[string]dbus.Variant{}, // hints
		int32(-1),                // expire_timeout, daemon default
	).Store(&id)
	if err != nil {
		return nil, fmt.Errorf("notification daemon: %w", err)
	}

	if a.Tag != "" {
		tagMu.Lock()
		tagIDs[a.Tag] = id
		tagMu.Unlock()
	}

	return nil, nil
}
