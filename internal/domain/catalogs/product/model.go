// Package product provides the Product catalog.
//
// Product.Quantity is the live, authoritative stock level for one branch. It
// is mutated exclusively through ledger-producing operations (sales, purchase
// receipts, manual adjustments, stock opname approval); at any instant it must
// equal the stock_after of the product's most recent ledger entry.
package product

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Product represents a sellable item stocked at one branch.
type Product struct {
	ID       id.ID  `db:"id" json:"id"`
	BranchID id.ID  `db:"branch_id" json:"branchId"`
	Name     string `db:"name" json:"name"`

	// SKU is unique within a branch when set.
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Quantity is the live stock level in whole units.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	CostPrice types.Money `db:"cost_price" json:"costPrice"`
	Price     types.Money `db:"price" json:"price"`

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// DeletionMark soft-deletes the product. Products referenced by historical
	// ledger or sale rows are never hard-deleted.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a new Product with the given seed quantity.
func New(branchID id.ID, name string, seedQuantity types.Quantity) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		BranchID:  branchID,
		Name:      name,
		Quantity:  seedQuantity,
		CostPrice: types.ZeroMoney(),
		Price:     types.ZeroMoney(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if id.IsNil(p.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.SKU != nil && *p.SKU == "" {
		return apperror.NewValidation("sku must not be empty when set").
			WithDetail("field", "sku")
	}
	return nil
}

// Touch updates the timestamp and increments version.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}
