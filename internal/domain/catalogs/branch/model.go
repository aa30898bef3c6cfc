// Package branch provides the Branch catalog.
// A branch is a physical business location and the primary scoping unit for
// inventory: products, ledger entries and opname sessions all belong to one.
package branch

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
)

// Branch represents a physical business location of a tenant.
type Branch struct {
	ID       id.ID   `db:"id" json:"id"`
	TenantID id.ID   `db:"tenant_id" json:"tenantId"`
	Name     string  `db:"name" json:"name"`
	Address  *string `db:"address" json:"address,omitempty"`
	Phone    *string `db:"phone" json:"phone,omitempty"`
	IsActive bool    `db:"is_active" json:"isActive"`

	// Version for optimistic locking (incremented on each update)
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new active Branch.
func New(tenantID id.ID, name string) *Branch {
	now := time.Now().UTC()
	return &Branch{
		ID:        id.New(),
		TenantID:  tenantID,
		Name:      name,
		IsActive:  true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks branch invariants.
func (b *Branch) Validate(ctx context.Context) error {
	if id.IsNil(b.TenantID) {
		return apperror.NewValidation("tenant is required").
			WithDetail("field", "tenantId")
	}
	if b.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Touch updates the timestamp and increments version.
func (b *Branch) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}
