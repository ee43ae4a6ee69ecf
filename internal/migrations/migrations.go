// Package migrations versions the permission store schema. Migrations are
// embedded .sql files named NNN_description.sql and applied in version order,
// each inside its own transaction, with applied versions tracked in
// schema_migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/titanbrowser/capbridge/internal/logging"
)

//go:embed *.sql
var migrationFiles embed.FS

// Migration is one embedded schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All returns the embedded migrations sorted by version.
func All() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		version, name, ok := parseFilename(entry.Name())
		if !ok {
			return nil, fmt.Errorf("bad migration filename %q, want NNN_description.sql", entry.Name())
		}
		content, err := migrationFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func parseFilename(filename string) (version int, name string, ok bool) {
	if !strings.HasSuffix(filename, ".sql") {
		return 0, "", false
	}
	prefix, rest, found := strings.Cut(filename, "_")
	if !found {
		return 0, "", false
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", false
	}
	return version, strings.TrimSuffix(rest, ".sql"), true
}

// Run applies every pending migration. Already applied versions are skipped,
// so calling it on every startup is safe.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	migrations, err := All()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := apply(ctx, db, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m Migration) error {
	log := logging.FromContext(ctx)

	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
	).Scan(&count); err != nil {
		return fmt.Errorf("check applied state: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Debug().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	return nil
}

// Applied returns the applied migration versions in ascending order. A
// database without the tracking table reports none.
func Applied(ctx context.Context, db *sql.DB) ([]int, error) {
	var count int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_migrations'",
	).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var versions []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}
