package permission

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

const testOrigin = "https://content.example"

func TestCheckDefaultsToNotDetermined(t *testing.T) {
	g := NewGate(Options{})
	state := g.Check(context.Background(), testOrigin, entity.PermissionLocation)
	require.Equal(t, entity.PermissionNotDetermined, state)
}

func TestRequestWithoutPrompterDenies(t *testing.T) {
	g := NewGate(Options{})

	state, err := g.Request(context.Background(), testOrigin, entity.PermissionNotifications)
	require.NoError(t, err)
	require.Equal(t, entity.PermissionDenied, state)

	// The denial sticks.
	require.Equal(t, entity.PermissionDenied, g.Check(context.Background(), testOrigin, entity.PermissionNotifications))
}

func TestRequestCoalescesConcurrentPrompts(t *testing.T) {
	var prompts atomic.Int32
	release := make(chan struct{})

	g := NewGate(Options{
		Prompter: PrompterFunc(func(context.Context, string, entity.PermissionKind) (entity.PermissionState, error) {
			prompts.Add(1)
			<-release
			return entity.PermissionGranted, nil
		}),
	})

	const callers = 8
	var wg sync.WaitGroup
	states := make([]entity.PermissionState, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			state, err := g.Request(context.Background(), testOrigin, entity.PermissionLocation)
			require.NoError(t, err)
			states[i] = state
		}(i)
	}

	// Let every caller pile onto the in-flight prompt before resolving it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), prompts.Load(), "concurrent requests must share one prompt")
	for _, state := range states {
		require.Equal(t, entity.PermissionGranted, state)
	}
}

func TestRequestDoesNotRepromptAfterDenial(t *testing.T) {
	var prompts atomic.Int32
	g := NewGate(Options{
		Prompter: PrompterFunc(func(context.Context, string, entity.PermissionKind) (entity.PermissionState, error) {
			prompts.Add(1)
			return entity.PermissionDenied, nil
		}),
	})

	for i := 0; i < 3; i++ {
		state, err := g.Request(context.Background(), testOrigin, entity.PermissionLocation)
		require.NoError(t, err)
		require.Equal(t, entity.PermissionDenied, state)
	}
	require.Equal(t, int32(1), prompts.Load())
}

func TestPromptErrorLeavesStateUndetermined(t *testing.T) {
	calls := 0
	g := NewGate(Options{
		Prompter: PrompterFunc(func(context.Context, string, entity.PermissionKind) (entity.PermissionState, error) {
			calls++
			if calls == 1 {
				return entity.PermissionNotDetermined, errors.New("dialog dismissed")
			}
			return entity.PermissionGranted, nil
		}),
	})

	_, err := g.Request(context.Background(), testOrigin, entity.PermissionNotifications)
	require.Error(t, err)

	// A later request prompts again and can still resolve.
	state, err := g.Request(context.Background(), testOrigin, entity.PermissionNotifications)
	require.NoError(t, err)
	require.Equal(t, entity.PermissionGranted, state)
}

func TestSetOverridesAndClears(t *testing.T) {
	g := NewGate(Options{})

	require.NoError(t, g.Set(context.Background(), testOrigin, entity.PermissionLocation, entity.PermissionGranted))
	require.Equal(t, entity.PermissionGranted, g.Check(context.Background(), testOrigin, entity.PermissionLocation))

	// Simulated OS-level revocation.
	require.NoError(t, g.Set(context.Background(), testOrigin, entity.PermissionLocation, entity.PermissionDenied))
	require.Equal(t, entity.PermissionDenied, g.Check(context.Background(), testOrigin, entity.PermissionLocation))

	// Clearing returns the kind to undetermined.
	require.NoError(t, g.Set(context.Background(), testOrigin, entity.PermissionLocation, entity.PermissionNotDetermined))
	require.Equal(t, entity.PermissionNotDetermined, g.Check(context.Background(), testOrigin, entity.PermissionLocation))

	require.Error(t, g.Set(context.Background(), testOrigin, entity.PermissionLocation, "maybe"))
}

func TestStatesAreScopedPerOriginAndKind(t *testing.T) {
	g := NewGate(Options{})

	require.NoError(t, g.Set(context.Background(), "https://a.example", entity.PermissionLocation, entity.PermissionGranted))

	require.Equal(t, entity.PermissionNotDetermined,
		g.Check(context.Background(), "https://b.example", entity.PermissionLocation))
	require.Equal(t, entity.PermissionNotDetermined,
		g.Check(context.Background(), "https://a.example", entity.PermissionNotifications))
}
