// Package facade builds the script injected into every content load. The
// script installs a promise-based capability API on a host global and wires
// the two window callbacks the bridge resolves calls and delivers
// subscription events through.
package facade

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"text/template"
)

// Options names the script-visible identifiers. Both must be valid JS
// identifiers; config validation enforces that before they get here.
type Options struct {
	// HandlerName is the renderer message handler the facade posts calls to,
	// reachable as window.webkit.messageHandlers.<HandlerName>.
	HandlerName string

	// GlobalName is the window property the capability API installs under.
	GlobalName string

	// BootToken namespaces correlation ids across content loads. Empty means
	// a random token per Build call.
	BootToken string
}

// NewBootToken returns a random token for correlation id namespacing.
func NewBootToken() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "boot"
	}
	return hex.EncodeToString(buf)
}

// Build renders the facade script for one content surface.
func Build(opts Options) (string, error) {
	if opts.HandlerName == "" || opts.GlobalName == "" {
		return "", fmt.Errorf("facade: handler and global names are required")
	}
	token := opts.BootToken
	if token == "" {
		token = NewBootToken()
	}

	var sb strings.Builder
	err := facadeTemplate.Execute(&sb, map[string]string{
		"Handler": opts.HandlerName,
		"Global":  opts.GlobalName,
		"Boot":    token,
	})
	if err != nil {
		return "", fmt.Errorf("facade: render script: %w", err)
	}
	return sb.String(), nil
}

var facadeTemplate = template.Must(template.New("facade").Parse(facadeScript))

// facadeScript runs inside the untrusted page. It keeps a pending-promise
// table keyed by correlation id and a watcher-callback table keyed by
// subscription id. Ids are "<boot>-<counter>" so a stale resolve from a
// previous content load can never match a live entry.
const facadeScript = `(function () {
    'use strict';
    if (window.{{.Global}}) { return; }

    var counter = 0;
    var pending = Object.create(null);
    var watchers = Object.create(null);

    function nextId() {
        counter += 1;
        return '{{.Boot}}-' + counter;
    }

    function post(capability, args) {
        return new Promise(function (resolve, reject) {
            var id = nextId();
            pending[id] = { resolve: resolve, reject: reject };
            try {
                window.webkit.messageHandlers.{{.Handler}}.postMessage(JSON.stringify({
                    correlationId: id,
                    capability: capability,
                    arguments: args === undefined ? null : args
                }));
            } catch (e) {
                delete pending[id];
                var err = new Error('host bridge unreachable');
                err.name = 'capability_unavailable';
                reject(err);
            }
        });
    }

    window.__titancap_resolve = function (result) {
        var entry = pending[result.correlationId];
        if (!entry) { return; }
        delete pending[result.correlationId];
        if (result.ok) {
            entry.resolve(result.value === undefined ? null : result.value);
        } else {
            var err = new Error(result.error ? result.error.message : 'operation failed');
            err.name = result.error ? result.error.kind : 'operation_failed';
            entry.reject(err);
        }
    };

    window.__titancap_event = function (event) {
        var cb = watchers[event.subscriptionId];
        if (cb) { cb(event.payload); }
    };

    var api = {
        clipboard: {
            writeText: function (text) {
                return post('clipboard.write', { text: String(text) });
            },
            readText: function () {
                return post('clipboard.read', null).then(function (v) { return v.text; });
            }
        },
        share: function (data) {
            return post('share', data || {});
        },
        notifications: {
            requestPermission: function () {
                return post('notification.requestPermission', null).then(function (v) { return v.state; });
            },
            show: function (title, options) {
                options = options || {};
                return post('notification.show', {
                    title: String(title),
                    body: options.body,
                    tag: options.tag
                });
            }
        },
        geolocation: {
            getCurrentPosition: function (options) {
                return post('geolocation.getCurrentPosition', options || null);
            },
            watchPosition: function (callback, options) {
                return post('geolocation.watchPosition', options || null).then(function (v) {
                    watchers[v.watchId] = callback;
                    return v.watchId;
                });
            },
            clearWatch: function (watchId) {
                delete watchers[watchId];
                return post('geolocation.clearWatch', { watchId: watchId });
            }
        },
        vibrate: function (pattern) {
            if (typeof pattern === 'number') { pattern = [pattern]; }
            return post('vibrate', { pattern: pattern || [] });
        },
        battery: {
            get: function () { return post('battery.get', null); }
        },
        network: {
            get: function () { return post('network.get', null); }
        },
        screenOrientation: {
            lock: function (orientation) {
                return post('screenOrientation.lock', { orientation: String(orientation) });
            },
            unlock: function () { return post('screenOrientation.unlock', null); },
            get: function () { return post('screenOrientation.get', null); }
        }
    };

    Object.defineProperty(window, '{{.Global}}', {
        value: Object.freeze(api),
        writable: false,
        configurable: false
    });
})();`
