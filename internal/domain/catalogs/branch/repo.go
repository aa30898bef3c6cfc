package branch

import (
	"context"

	"tokopos/internal/core/id"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, branchID id.ID) (*Branch, error)
	Update(ctx context.Context, b *Branch) error
	ListByTenant(ctx context.Context, tenantID id.ID) ([]*Branch, error)

	// ListActive returns every active branch across tenants.
	// Used by the nightly report regeneration batch.
	ListActive(ctx context.Context) ([]*Branch, error)
}
