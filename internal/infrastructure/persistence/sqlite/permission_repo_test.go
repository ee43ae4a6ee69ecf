package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/domain/repository"
)

func testRepo(t *testing.T) repository.PermissionRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "permissions.db")

	db, err := NewConnection(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPermissionRepository(db)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := testRepo(t)

	rec, err := repo.Get(context.Background(), "https://example.com", entity.PermissionLocation)
	require.NoError(t, err)
	require.Nil(t, rec, "a missing record means not determined, not an error")
}

func TestSetThenGetRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://example.com",
		Kind:   entity.PermissionNotifications,
		State:  entity.PermissionGranted,
	}))

	rec, err := repo.Get(ctx, "https://example.com", entity.PermissionNotifications)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, entity.PermissionGranted, rec.State)
	require.NotZero(t, rec.UpdatedAt, "updated_at must default when unset")
}

func TestSetUpsertsExistingDecision(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://example.com",
		Kind:   entity.PermissionLocation,
		State:  entity.PermissionGranted,
	}))
	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://example.com",
		Kind:   entity.PermissionLocation,
		State:  entity.PermissionDenied,
	}))

	rec, err := repo.Get(ctx, "https://example.com", entity.PermissionLocation)
	require.NoError(t, err)
	require.Equal(t, entity.PermissionDenied, rec.State)
}

func TestSetNilRecordFails(t *testing.T) {
	repo := testRepo(t)
	require.Error(t, repo.Set(context.Background(), nil))
}

func TestDeleteClearsDecision(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://example.com",
		Kind:   entity.PermissionLocation,
		State:  entity.PermissionDenied,
	}))
	require.NoError(t, repo.Delete(ctx, "https://example.com", entity.PermissionLocation))

	rec, err := repo.Get(ctx, "https://example.com", entity.PermissionLocation)
	require.NoError(t, err)
	require.Nil(t, rec)

	// Deleting again stays a no-op.
	require.NoError(t, repo.Delete(ctx, "https://example.com", entity.PermissionLocation))
}

func TestListByOriginScopesToOrigin(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://a.example", Kind: entity.PermissionLocation, State: entity.PermissionGranted,
	}))
	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://a.example", Kind: entity.PermissionNotifications, State: entity.PermissionDenied,
	}))
	require.NoError(t, repo.Set(ctx, &entity.PermissionRecord{
		Origin: "https://b.example", Kind: entity.PermissionLocation, State: entity.PermissionGranted,
	}))

	records, err := repo.ListByOrigin(ctx, "https://a.example")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		require.Equal(t, "https://a.example", rec.Origin)
	}

	records, err = repo.ListByOrigin(ctx, "https://c.example")
	require.NoError(t, err)
	require.Empty(t, records)
}
