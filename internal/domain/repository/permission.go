package repository

import (
	"context"

	"github.com/titanbrowser/capbridge/internal/domain/entity"
)

// PermissionRepository defines operations for permission persistence.
// Decisions are keyed by (origin, kind); an absent record means the
// permission is still undetermined.
type PermissionRepository interface {
	// Get retrieves the permission record for a specific origin and kind.
	// Returns nil if no record exists (treat as not_determined).
	Get(ctx context.Context, origin string, kind entity.PermissionKind) (*entity.PermissionRecord, error)

	// Set saves or updates a permission record.
	Set(ctx context.Context, record *entity.PermissionRecord) error

	// Delete removes a permission record for a specific origin and kind.
	Delete(ctx context.Context, origin string, kind entity.PermissionKind) error

	// ListByOrigin retrieves all permission records for an origin.
	ListByOrigin(ctx context.Context, origin string) ([]*entity.PermissionRecord, error)
}
