package users

import (
	"context"

	"tokopos/internal/core/id"
)

// Repository defines the interface for User persistence.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListAdminsByTenant returns active admin users of one tenant. The
	// notification fan-out on opname transitions is scoped with this call;
	// admins of other tenants must never be returned.
	ListAdminsByTenant(ctx context.Context, tenantID id.ID) ([]*User, error)
}
