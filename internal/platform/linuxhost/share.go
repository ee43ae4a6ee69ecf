package linuxhost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/godbus/dbus/v5"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

const (
	portalDest   = "org.freedesktop.portal.Desktop"
	portalPath   = "/org/freedesktop/portal/desktop"
	openURIIface = "org.freedesktop.portal.OpenURI"
)

// share hands the payload to the XDG OpenURI portal. A URL opens directly;
// title and text without a URL are wrapped in a mailto: draft, the closest a
// desktop portal gets to a share sheet.
func (h *Host) share(_ context.Context, args json.RawMessage) (any, error) {
	var a entity.ShareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	target := a.URL
	if target == "" {
		q := url.Values{}
		if a.Title != "" {
			q.Set("subject", a.Title)
		}
		if a.Text != "" {
			q.Set("body", a.Text)
		}
		target = "mailto:?" + q.Encode()
	}

	obj := h.session.Object(portalDest, portalPath)

	var handle dbus.ObjectPath
	err := obj.Call(openURIIface+".OpenURI", 0,
		"", // parent window identifier
		target,
		map[string]dbus.Variant{},
	).Store(&handle)
	if err != nil {
		return nil, fmt.Errorf("openuri portal: %w", err)
	}

	return nil, nil
}
