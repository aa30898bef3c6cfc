package product

import (
	"context"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, productID id.ID) error

	// GetForUpdate retrieves the product with a row lock (SELECT ... FOR UPDATE).
	// Every ledger-producing mutation must lock the row first and hold the lock
	// until the ledger entry is committed.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	// SetQuantity overwrites the live quantity. Only callers that also append
	// a ledger entry in the same transaction may use this.
	SetQuantity(ctx context.Context, productID id.ID, quantity types.Quantity) error

	// GetBySKU resolves a product by SKU within a branch.
	GetBySKU(ctx context.Context, branchID id.ID, sku string) (*Product, error)

	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

// ListFilter for filtering product queries.
type ListFilter struct {
	BranchID       id.ID
	Search         string
	CategoryID     *id.ID
	IncludeDeleted bool
	Limit          int
	Offset         int
}
