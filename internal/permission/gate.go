// Package permission implements the permission gate: cached per-origin
// permission states, lazy revocation polling, and coalesced prompts.
package permission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/domain/repository"
	"github.com/titanbrowser/capbridge/internal/logging"
)

// Prompter presents the OS permission dialog to the user. The host UI
// implements this; the gate only guarantees that concurrent requests for the
// same (origin, kind) reach the prompter once.
type Prompter interface {
	Prompt(ctx context.Context, origin string, kind entity.PermissionKind) (entity.PermissionState, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, origin string, kind entity.PermissionKind) (entity.PermissionState, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, origin string, kind entity.PermissionKind) (entity.PermissionState, error) {
	return f(ctx, origin, kind)
}

type stateKey struct {
	origin string
	kind   entity.PermissionKind
}

// Gate tracks permission state per (origin, kind). One Gate serves every
// bridge instance in the process; all mutation happens inside it, which keeps
// the shared state single-writer and prompts deduplicated.
type Gate struct {
	store         repository.PermissionRepository // optional; nil keeps states in memory only
	prompter      Prompter                        // optional; nil resolves prompts as denied
	promptTimeout time.Duration

	mu     sync.Mutex
	states map[stateKey]entity.PermissionState

	group singleflight.Group
}

// Options configures a Gate.
type Options struct {
	Store         repository.PermissionRepository
	Prompter      Prompter
	PromptTimeout time.Duration
}

// NewGate creates a permission gate.
func NewGate(opts Options) *Gate {
	return &Gate{
		store:         opts.Store,
		prompter:      opts.Prompter,
		promptTimeout: opts.PromptTimeout,
		states:        make(map[stateKey]entity.PermissionState),
	}
}

// Check returns the current state for (origin, kind) without prompting.
// When a store is configured it is re-read on every check so an external
// revocation is observed before the next gated call, not pushed.
func (g *Gate) Check(ctx context.Context, origin string, kind entity.PermissionKind) entity.PermissionState {
	log := logging.FromContext(ctx)

	if g.store != nil {
		record, err := g.store.Get(ctx, origin, kind)
		if err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("permission store read failed, using cached state")
		} else if record != nil && record.State.Valid() {
			g.mu.Lock()
			g.states[stateKey{origin, kind}] = record.State
			g.mu.Unlock()
			return record.State
		}
	}

	g.mu.Lock()
	state, ok := g.states[stateKey{origin, kind}]
	g.mu.Unlock()
	if !ok {
		return entity.PermissionNotDetermined
	}
	return state
}

// Request resolves the permission, prompting the user if it is still
// undetermined. Concurrent requests for the same (origin, kind) are coalesced
// into a single prompt; every caller observes the same resolved state.
// A denied or restricted state short-circuits without prompting: the bridge
// never re-prompts on its own.
func (g *Gate) Request(ctx context.Context, origin string, kind entity.PermissionKind) (entity.PermissionState, error) {
	if state := g.Check(ctx, origin, kind); state != entity.PermissionNotDetermined {
		return state, nil
	}

	key := origin + "\x00" + string(kind)
	v, err, _ := g.group.Do(key, func() (any, error) {
		// Re-check inside the flight: a caller that lost the race to a
		// finished prompt must not trigger a second dialog.
		if state := g.Check(ctx, origin, kind); state != entity.PermissionNotDetermined {
			return state, nil
		}
		return g.prompt(ctx, origin, kind)
	})
	if err != nil {
		return entity.PermissionNotDetermined, err
	}
	return v.(entity.PermissionState), nil
}

func (g *Gate) prompt(ctx context.Context, origin string, kind entity.PermissionKind) (entity.PermissionState, error) {
	log := logging.FromContext(ctx)

	if g.prompter == nil {
		log.Debug().Str("kind", string(kind)).Msg("no prompter configured, resolving as denied")
		return g.record(ctx, origin, kind, entity.PermissionDenied), nil
	}

	promptCtx := ctx
	if g.promptTimeout > 0 {
		var cancel context.CancelFunc
		promptCtx, cancel = context.WithTimeout(ctx, g.promptTimeout)
		defer cancel()
	}

	state, err := g.prompter.Prompt(promptCtx, origin, kind)
	if err != nil {
		// A dismissed or failed prompt is a denial for the pending calls,
		// but leaves the state undetermined so a later call may prompt again.
		log.Warn().Err(err).Str("kind", string(kind)).Msg("permission prompt failed")
		return entity.PermissionNotDetermined, fmt.Errorf("permission prompt: %w", err)
	}
	if !state.Valid() {
		return entity.PermissionNotDetermined, fmt.Errorf("prompt returned invalid state %q", state)
	}

	log.Info().
		Str("origin", origin).
		Str("kind", string(kind)).
		Str("state", string(state)).
		Msg("permission resolved")

	return g.record(ctx, origin, kind, state), nil
}

func (g *Gate) record(ctx context.Context, origin string, kind entity.PermissionKind, state entity.PermissionState) entity.PermissionState {
	log := logging.FromContext(ctx)

	g.mu.Lock()
	g.states[stateKey{origin, kind}] = state
	g.mu.Unlock()

	if g.store != nil && state != entity.PermissionNotDetermined {
		record := &entity.PermissionRecord{
			Origin:    origin,
			Kind:      kind,
			State:     state,
			UpdatedAt: time.Now().Unix(),
		}
		if err := g.store.Set(ctx, record); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("failed to persist permission state")
		}
	}

	return state
}

// Set overrides the state for (origin, kind). Used by the host when the user
// changes a decision through settings, and by the demo console to simulate
// OS-level revocation.
func (g *Gate) Set(ctx context.Context, origin string, kind entity.PermissionKind, state entity.PermissionState) error {
	if !state.Valid() {
		return fmt.Errorf("invalid permission state %q", state)
	}

	if state == entity.PermissionNotDetermined {
		g.mu.Lock()
		delete(g.states, stateKey{origin, kind})
		g.mu.Unlock()
		if g.store != nil {
			return g.store.Delete(ctx, origin, kind)
		}
		return nil
	}

	g.record(ctx, origin, kind, state)
	return nil
}
