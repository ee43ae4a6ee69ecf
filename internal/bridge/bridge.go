// Package bridge implements the host capability bridge: a per-content-surface
// dispatcher that exposes a fixed set of OS capabilities to untrusted script
// content running in an embedded renderer.
package bridge

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/titanbrowser/capbridge/internal/config"
	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/logging"
	"github.com/titanbrowser/capbridge/internal/permission"
	"github.com/titanbrowser/capbridge/internal/platform"
)

// ContentInjector is the renderer-side surface the bridge needs: installing
// the facade script once per content load and running result-delivery
// scripts. The embedded renderer implements it; the bridge never touches the
// renderer otherwise.
type ContentInjector interface {
	InstallFacade(ctx context.Context, script string) error
	InjectScript(ctx context.Context, script string) error
}

// Options configures one bridge instance.
type Options struct {
	// Origin identifies the content this surface hosts; permission state is
	// keyed by it.
	Origin string

	Config   *config.Config
	Adapters platform.AdapterSet
	Gate     *permission.Gate

	// Injector delivers the facade and results into the content surface.
	// Optional when Sink is set directly (tests, demo console).
	Injector ContentInjector

	// Sink overrides the injector-backed delivery path. Optional.
	Sink ResultSink

	// FacadeScript is the polyfill installed via the injector.
	FacadeScript string
}

// Bridge is one per-content-surface capability bridge instance. It owns its
// registry binding and subscription table; permission state is shared
// process-wide through the gate.
type Bridge struct {
	origin     string
	registry   *Registry
	dispatcher *Dispatcher
	subs       *SubscriptionManager
	adapters   platform.AdapterSet
	injector   ContentInjector
	facade     string
	sink       ResultSink

	disposed atomic.Bool
}

// New constructs a bridge instance: the registry is built once from the
// static contract table, the running adapter family and the capability
// switches in config, then never mutated.
func New(ctx context.Context, opts Options) (*Bridge, error) {
	log := logging.FromContext(ctx)

	b := &Bridge{
		origin:   opts.Origin,
		registry: NewRegistry(),
		adapters: opts.Adapters,
		injector: opts.Injector,
		facade:   opts.FacadeScript,
	}

	if opts.Sink != nil {
		b.sink = opts.Sink
	} else {
		b.sink = &injectorSink{bridge: b}
	}

	b.subs = NewSubscriptionManager(func(event SubscriptionEvent) {
		b.sink.DeliverEvent(context.WithoutCancel(ctx), event)
	})

	for _, contract := range Contracts() {
		handler, registered := b.buildHandler(ctx, contract, opts)
		if err := b.registry.Register(registered, handler); err != nil {
			return nil, err
		}
	}

	b.dispatcher = NewDispatcher(b.registry, opts.Gate, opts.Origin, b.sink, opts.Config.Dispatch.CallTimeout)

	log.Debug().
		Str("origin", opts.Origin).
		Str("family", string(opts.Adapters.Family())).
		Int("capabilities", b.registry.Len()).
		Msg("bridge instance constructed")

	return b, nil
}

// buildHandler resolves the contract against the adapter set and config. The
// graceful-no-op versus capability_unavailable decision happens here, at
// registration time: an unavailable capability is registered with a failing
// handler and its permission requirement stripped, so no user is ever
// prompted for something that cannot work.
func (b *Bridge) buildHandler(ctx context.Context, contract Contract, opts Options) (Handler, Contract) {
	if !capabilityEnabled(contract.Name, opts.Config.Capabilities) ||
		!contract.SupportsFamily(opts.Adapters.Family()) {
		return unavailableHandler(contract.Name), ungated(contract)
	}

	switch contract.Kind {
	case KindWatch:
		watcher, ok := opts.Adapters.Watcher(contract.Name)
		if !ok {
			return unavailableHandler(contract.Name), ungated(contract)
		}
		return b.watchHandler(contract.Name, watcher), contract

	case KindWatchCancel:
		return func(ctx context.Context, args json.RawMessage) (any, error) {
			var cancelArgs entity.ClearWatchArgs
			_ = json.Unmarshal(args, &cancelArgs) // validated upstream
			b.subs.Cancel(ctx, cancelArgs.WatchID)
			return nil, nil
		}, contract

	default:
		if contract.Name == entity.CapNotificationRequestPermission {
			// The request operation itself is ungated: it IS the gate.
			return func(ctx context.Context, _ json.RawMessage) (any, error) {
				state, err := opts.Gate.Request(ctx, b.origin, entity.PermissionNotifications)
				if err != nil {
					return nil, WrapError(ErrOperationFailed, err)
				}
				return entity.PermissionStateResult{State: state}, nil
			}, contract
		}

		invoker, ok := opts.Adapters.Invoker(contract.Name)
		if !ok {
			return unavailableHandler(contract.Name), ungated(contract)
		}
		return Handler(invoker), contract
	}
}

func (b *Bridge) watchHandler(name entity.CapabilityName, watcher platform.Watcher) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		// The subscription outlives this call; its lifetime is bounded by
		// cancellation or bridge teardown, not by the call deadline.
		watchCtx := context.WithoutCancel(ctx)
		id, err := b.subs.Start(ctx, name, func(emit platform.EventFunc) (platform.CancelFunc, error) {
			return watcher(watchCtx, args, emit)
		})
		if err != nil {
			return nil, err
		}
		return entity.WatchHandle{WatchID: id}, nil
	}
}

func unavailableHandler(name entity.CapabilityName) Handler {
	return func(context.Context, json.RawMessage) (any, error) {
		return nil, NewError(ErrCapabilityUnavailable, "%s is not available on this platform", name)
	}
}

// ungated strips the permission requirement from an unavailable contract so
// the dispatcher fails it fast without consulting the gate.
func ungated(contract Contract) Contract {
	contract.RequiredPermission = ""
	return contract
}

func capabilityEnabled(name entity.CapabilityName, caps config.CapabilitiesConfig) bool {
	switch name {
	case entity.CapClipboardWrite, entity.CapClipboardRead:
		return caps.ClipboardEnabled
	case entity.CapShare:
		return caps.ShareEnabled
	case entity.CapNotificationRequestPermission, entity.CapNotificationShow:
		return caps.NotificationsEnabled
	case entity.CapGeolocationGetCurrentPosition, entity.CapGeolocationWatchPosition, entity.CapGeolocationClearWatch:
		return caps.GeolocationEnabled
	case entity.CapVibrate:
		return caps.VibrationEnabled
	case entity.CapBatteryGet:
		return caps.BatteryEnabled
	case entity.CapNetworkGet:
		return caps.NetworkEnabled
	case entity.CapScreenOrientationLock, entity.CapScreenOrientationUnlock, entity.CapScreenOrientationGet:
		return caps.OrientationEnabled
	}
	return false
}

// Origin returns the content origin this bridge serves.
func (b *Bridge) Origin() string {
	return b.origin
}

// Registry exposes the read-only capability registry.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// Subscriptions exposes the subscription table (CLI doctor and tests).
func (b *Bridge) Subscriptions() *SubscriptionManager {
	return b.subs
}

// InstallFacade injects the script facade into the content surface. Called
// once per content load; the facade rebuilds its pending-call table from
// scratch each time.
func (b *Bridge) InstallFacade(ctx context.Context) error {
	if b.injector == nil {
		return nil
	}
	return b.injector.InstallFacade(ctx, b.facade)
}

// HandleScriptMessage processes one raw message posted by the facade. A
// payload that does not decode into a call request is logged and dropped;
// there is no correlation id to fail.
func (b *Bridge) HandleScriptMessage(ctx context.Context, payload string) {
	log := logging.FromContext(ctx)

	req, err := ParseCallRequest([]byte(payload))
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse script message")
		return
	}

	b.Dispatch(ctx, req)
}

// Dispatch submits one call request directly (demo console, tests). The
// dispatcher surfaces bridge_disposed after teardown, so no guard is needed.
func (b *Bridge) Dispatch(ctx context.Context, req CallRequest) {
	b.dispatcher.Dispatch(ctx, req)
}

// Dispose tears the bridge down: new calls fail with bridge_disposed and
// every subscription stops synchronously. Idempotent.
func (b *Bridge) Dispose(ctx context.Context) {
	log := logging.FromContext(ctx)

	if !b.disposed.CompareAndSwap(false, true) {
		return
	}

	b.dispatcher.Dispose()
	b.subs.DisposeAll(ctx)

	log.Debug().Str("origin", b.origin).Msg("bridge disposed")
}

// injectorSink delivers results and events into the content surface through
// window callbacks, the same way every other host-to-content push works.
type injectorSink struct {
	bridge *Bridge
}

func (s *injectorSink) DeliverResult(ctx context.Context, result CallResult) {
	s.deliver(ctx, "__titancap_resolve", result)
}

func (s *injectorSink) DeliverEvent(ctx context.Context, event SubscriptionEvent) {
	s.deliver(ctx, "__titancap_event", event)
}

func (s *injectorSink) deliver(ctx context.Context, callback string, payload any) {
	log := logging.FromContext(ctx)

	if s.bridge.injector == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("callback", callback).Msg("failed to marshal delivery payload")
		return
	}

	script := "window." + callback + " && window." + callback + "(" + string(data) + ")"
	if err := s.bridge.injector.InjectScript(ctx, script); err != nil {
		log.Warn().Err(err).Str("callback", callback).Msg("failed to inject delivery script")
	}
}
