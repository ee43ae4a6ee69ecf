package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/logging"
	"github.com/titanbrowser/capbridge/internal/platform"
)

// Subscription is one outstanding watch-style operation.
type Subscription struct {
	ID         string
	Capability entity.CapabilityName

	active atomic.Bool
	cancel platform.CancelFunc
}

// Active reports whether the subscription still delivers events.
func (s *Subscription) Active() bool {
	return s.active.Load()
}

// StartFunc begins adapter-side delivery and returns the cancellation thunk.
type StartFunc func(emit platform.EventFunc) (platform.CancelFunc, error)

// SubscriptionManager tracks outstanding watches for one bridge instance.
// Cancellation is idempotent and teardown synchronously stops every delivery.
type SubscriptionManager struct {
	deliver func(SubscriptionEvent)

	mu       sync.Mutex
	subs     map[string]*Subscription
	disposed bool
}

// NewSubscriptionManager creates a manager delivering events through deliver.
func NewSubscriptionManager(deliver func(SubscriptionEvent)) *SubscriptionManager {
	return &SubscriptionManager{
		deliver: deliver,
		subs:    make(map[string]*Subscription),
	}
}

// Start allocates a subscription id, begins adapter delivery and stores the
// cancellation thunk. Events reaching the manager after cancellation or
// teardown are dropped.
func (m *SubscriptionManager) Start(ctx context.Context, capability entity.CapabilityName, start StartFunc) (string, error) {
	log := logging.FromContext(ctx)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return "", NewError(ErrBridgeDisposed, "subscription manager is disposed")
	}

	sub := &Subscription{
		ID:         uuid.NewString(),
		Capability: capability,
	}
	sub.active.Store(true)
	m.subs[sub.ID] = sub
	m.mu.Unlock()

	emit := func(payload any) {
		// The adapter may fire from its own goroutine at any time, including
		// while cancel or teardown runs. The active flag is the gate.
		if !sub.active.Load() {
			return
		}
		m.deliver(SubscriptionEvent{SubscriptionID: sub.ID, Payload: payload})
	}

	cancel, err := start(emit)
	if err != nil {
		m.mu.Lock()
		sub.active.Store(false)
		delete(m.subs, sub.ID)
		m.mu.Unlock()
		return "", err
	}

	m.mu.Lock()
	sub.cancel = cancel
	// The manager may have been disposed while the adapter was starting.
	if m.disposed || !sub.active.Load() {
		m.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return "", NewError(ErrBridgeDisposed, "subscription manager disposed during start")
	}
	m.mu.Unlock()

	log.Debug().Str("subscription_id", sub.ID).Str("capability", string(capability)).Msg("subscription started")
	return sub.ID, nil
}

// Cancel stops the subscription with the given id. Cancelling an unknown or
// already-cancelled id is a no-op.
func (m *SubscriptionManager) Cancel(ctx context.Context, id string) {
	log := logging.FromContext(ctx)

	m.mu.Lock()
	sub, ok := m.subs[id]
	if ok {
		delete(m.subs, id)
	}
	m.mu.Unlock()

	if !ok {
		log.Debug().Str("subscription_id", id).Msg("cancel for unknown subscription ignored")
		return
	}

	if sub.active.CompareAndSwap(true, false) {
		if sub.cancel != nil {
			sub.cancel()
		}
		log.Debug().Str("subscription_id", id).Str("capability", string(sub.Capability)).Msg("subscription cancelled")
	}
}

// DisposeAll cancels every still-active subscription. Called exactly once at
// bridge teardown, but safe to call again and safe while adapters are
// mid-delivery.
func (m *SubscriptionManager) DisposeAll(ctx context.Context) {
	log := logging.FromContext(ctx)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	remaining := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		remaining = append(remaining, sub)
	}
	m.subs = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range remaining {
		if sub.active.CompareAndSwap(true, false) {
			if sub.cancel != nil {
				sub.cancel()
			}
		}
	}

	if len(remaining) > 0 {
		log.Debug().Int("count", len(remaining)).Msg("subscriptions disposed")
	}
}

// Len returns the number of active subscriptions.
func (m *SubscriptionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
