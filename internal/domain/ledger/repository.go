package ledger

import (
	"context"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Repository defines persistence for ledger entries.
//
// The ledger is append-only: no update or delete operations are exposed.
type Repository interface {
	// Insert appends one entry and fills in its database-assigned Seq.
	Insert(ctx context.Context, e *Entry) error

	// GetLatest returns the most recent entry for (branch, product) by
	// (created_at, seq), or nil if the product has no history.
	GetLatest(ctx context.Context, branchID, productID id.ID) (*Entry, error)

	// GetLatestAtOrBefore returns the most recent entry with created_at <= t,
	// or nil if none exists at or before t.
	GetLatestAtOrBefore(ctx context.Context, branchID, productID id.ID, t time.Time) (*Entry, error)

	// SumChangesAfter sums quantity_change over entries with created_at > t.
	SumChangesAfter(ctx context.Context, branchID, productID id.ID, t time.Time) (types.Quantity, error)

	// ListByProduct returns entries for (branch, product) within [from, to],
	// ordered by (created_at, seq) ascending.
	ListByProduct(ctx context.Context, branchID, productID id.ID, from, to time.Time) ([]*Entry, error)

	// ListByBranch returns entries for a branch within [from, to], ordered by
	// (created_at, seq) ascending. Used by the stock mutation report.
	ListByBranch(ctx context.Context, branchID id.ID, from, to time.Time) ([]*Entry, error)

	// ListByReference returns entries caused by one business object.
	ListByReference(ctx context.Context, ref Reference) ([]*Entry, error)
}

// ProductStore is the slice of the product catalog the ledger needs.
//
// GetQuantityForUpdate must acquire a row lock on the product and hold it for
// the remainder of the surrounding transaction, serializing concurrent
// mutators of the same product.
type ProductStore interface {
	GetQuantityForUpdate(ctx context.Context, productID id.ID) (ProductSnapshot, error)
	GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error)
	SetQuantity(ctx context.Context, productID id.ID, quantity types.Quantity) error
}

// ProductSnapshot is the locked read used when appending an entry.
type ProductSnapshot struct {
	ProductID id.ID
	BranchID  id.ID
	Name      string
	Quantity  types.Quantity
}
