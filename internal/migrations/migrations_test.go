package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, Run(ctx, db))
	first, err := Applied(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, Run(ctx, db))
	second, err := Applied(ctx, db)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAllAreOrderedAndParsed(t *testing.T) {
	migrations, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	last := 0
	for _, m := range migrations {
		require.Greater(t, m.Version, last, "versions must be strictly ascending")
		require.NotEmpty(t, m.Name)
		require.NotEmpty(t, m.SQL)
		last = m.Version
	}
}

func TestAppliedOnFreshDatabaseIsEmpty(t *testing.T) {
	versions, err := Applied(context.Background(), openTestDB(t))
	require.NoError(t, err)
	require.Empty(t, versions)
}

func TestPermissionsTableExistsAfterRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, Run(ctx, db))

	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='permissions'",
	).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
