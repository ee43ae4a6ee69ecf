package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/domain/repository"
	"github.com/titanbrowser/capbridge/internal/logging"
)

type permissionRepo struct {
	db *sql.DB
}

// NewPermissionRepository creates a new SQLite-backed permission repository.
func NewPermissionRepository(db *sql.DB) repository.PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) Get(ctx context.Context, origin string, kind entity.PermissionKind) (*entity.PermissionRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Str("kind", string(kind)).Msg("getting permission")

	row := r.db.QueryRowContext(ctx,
		`SELECT origin, kind, state, updated_at FROM permissions WHERE origin = ? AND kind = ?`,
		origin, string(kind),
	)

	var rec entity.PermissionRecord
	var k, state string
	if err := row.Scan(&rec.Origin, &k, &state, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rec.Kind = entity.PermissionKind(k)
	rec.State = entity.PermissionState(state)

	return &rec, nil
}

func (r *permissionRepo) Set(ctx context.Context, record *entity.PermissionRecord) error {
	log := logging.FromContext(ctx)

	if record == nil {
		log.Error().Msg("cannot set nil permission record")
		return errors.New("cannot set nil permission record")
	}

	log.Debug().
		Str("origin", record.Origin).
		Str("kind", string(record.Kind)).
		Str("state", string(record.State)).
		Msg("setting permission")

	updatedAt := record.UpdatedAt
	if updatedAt == 0 {
		updatedAt = time.Now().Unix()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (origin, kind, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (origin, kind) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		record.Origin, string(record.Kind), string(record.State), updatedAt,
	)
	return err
}

func (r *permissionRepo) Delete(ctx context.Context, origin string, kind entity.PermissionKind) error {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Str("kind", string(kind)).Msg("deleting permission")

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM permissions WHERE origin = ? AND kind = ?`,
		origin, string(kind),
	)
	return err
}

func (r *permissionRepo) ListByOrigin(ctx context.Context, origin string) ([]*entity.PermissionRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("origin", origin).Msg("listing permissions for origin")

	rows, err := r.db.QueryContext(ctx,
		`SELECT origin, kind, state, updated_at FROM permissions WHERE origin = ? ORDER BY kind`,
		origin,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []*entity.PermissionRecord
	for rows.Next() {
		var rec entity.PermissionRecord
		var k, state string
		if err := rows.Scan(&rec.Origin, &k, &state, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Kind = entity.PermissionKind(k)
		rec.State = entity.PermissionState(state)
		records = append(records, &rec)
	}

	return records, rows.Err()
}
