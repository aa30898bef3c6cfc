// Package ledger provides the stock mutation ledger: an append-only log of
// every inventory quantity change, with before/after snapshots. It is the
// source of truth for point-in-time stock reconstruction.
package ledger

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// MutationType classifies what caused an inventory change.
type MutationType string

const (
	TypeSale               MutationType = "sale"
	TypePurchase           MutationType = "purchase"
	TypeAdjustment         MutationType = "adjustment"
	TypeStockOpname        MutationType = "stock_opname"
	TypeSaleReturn         MutationType = "sale_return"
	TypeDeletedSaleRestock MutationType = "transaction_deleted_sale_restock"
)

// ValidType reports whether t is a known mutation type.
func ValidType(t MutationType) bool {
	switch t {
	case TypeSale, TypePurchase, TypeAdjustment, TypeStockOpname,
		TypeSaleReturn, TypeDeletedSaleRestock:
		return true
	}
	return false
}

// ReferenceKind identifies the business object that caused a mutation.
type ReferenceKind string

const (
	RefSale          ReferenceKind = "sale"
	RefPurchaseOrder ReferenceKind = "purchase_order"
	RefStockOpname   ReferenceKind = "stock_opname"
)

// Reference is a tagged union pointing at the causing business object.
// The zero value means "no reference".
type Reference struct {
	Kind ReferenceKind
	ID   id.ID
}

// IsZero reports whether the reference is unset.
func (r Reference) IsZero() bool {
	return r.Kind == "" && id.IsNil(r.ID)
}

// NewOpnameReference builds a reference to a stock opname session.
func NewOpnameReference(sessionID id.ID) Reference {
	return Reference{Kind: RefStockOpname, ID: sessionID}
}

// Entry is one immutable row in the stock mutation ledger.
//
// For a fixed (branch, product), entries ordered by (created_at, seq) form a
// strictly consistent chain: each entry's stock_before equals the previous
// entry's stock_after. Entries are never updated or deleted.
type Entry struct {
	ID id.ID `db:"id" json:"id"`

	// Seq is assigned by the database (BIGSERIAL) and breaks ties between
	// entries sharing a created_at timestamp. (created_at, seq) is the total
	// order every read-side consumer depends on.
	Seq int64 `db:"seq" json:"seq"`

	BranchID  id.ID `db:"branch_id" json:"branchId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// ProductName is a value copy taken at write time, kept for historical
	// fidelity when the product is later renamed or deleted.
	ProductName string `db:"product_name" json:"productName"`

	// QuantityChange is signed: positive = stock in, negative = stock out.
	QuantityChange types.Quantity `db:"quantity_change" json:"quantityChange"`
	StockBefore    types.Quantity `db:"stock_before" json:"stockBefore"`
	StockAfter     types.Quantity `db:"stock_after" json:"stockAfter"`

	Type        MutationType `db:"type" json:"type"`
	Description string       `db:"description" json:"description,omitempty"`

	ReferenceKind *ReferenceKind `db:"reference_kind" json:"referenceKind,omitempty"`
	ReferenceID   *id.ID         `db:"reference_id" json:"referenceId,omitempty"`

	// Denormalized actor snapshot.
	UserID   *id.ID `db:"user_id" json:"userId,omitempty"`
	UserName string `db:"user_name" json:"userName,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Reference reconstructs the tagged union from the stored columns.
func (e *Entry) Reference() Reference {
	if e.ReferenceKind == nil || e.ReferenceID == nil {
		return Reference{}
	}
	return Reference{Kind: *e.ReferenceKind, ID: *e.ReferenceID}
}

// Actor identifies who performed a mutation. Name is copied onto the entry.
type Actor struct {
	UserID   id.ID
	UserName string
}

// newEntry builds an entry computing stock_after from stock_before + delta.
// stock_after is never accepted from the caller; the arithmetic lives in one
// place so a ledger entry can never be written with an inconsistent pair.
func newEntry(
	branchID, productID id.ID,
	productName string,
	stockBefore, delta types.Quantity,
	mutType MutationType,
	description string,
	ref Reference,
	actor Actor,
) (*Entry, error) {
	if !ValidType(mutType) {
		return nil, apperror.NewValidation("unknown mutation type").
			WithDetail("type", string(mutType))
	}
	if stockBefore+delta < 0 {
		return nil, apperror.NewBusinessRule("INSUFFICIENT_STOCK", "change would drive stock negative").
			WithDetail("stock_before", stockBefore).
			WithDetail("quantity_change", delta)
	}

	e := &Entry{
		ID:             id.New(),
		BranchID:       branchID,
		ProductID:      productID,
		ProductName:    productName,
		QuantityChange: delta,
		StockBefore:    stockBefore,
		StockAfter:     stockBefore + delta,
		Type:           mutType,
		Description:    description,
		UserName:       actor.UserName,
		CreatedAt:      time.Now().UTC(),
	}

	if !id.IsNil(actor.UserID) {
		uid := actor.UserID
		e.UserID = &uid
	}
	if !ref.IsZero() {
		kind := ref.Kind
		refID := ref.ID
		e.ReferenceKind = &kind
		e.ReferenceID = &refID
	}

	return e, nil
}

// Validate checks entry invariants. Exposed for tests and repository guards.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.BranchID) {
		return apperror.NewValidation("branch is required").WithDetail("field", "branchId")
	}
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if e.StockAfter != e.StockBefore+e.QuantityChange {
		return apperror.NewValidation("stock_after must equal stock_before + quantity_change")
	}
	if !ValidType(e.Type) {
		return apperror.NewValidation("unknown mutation type").WithDetail("type", string(e.Type))
	}
	return nil
}
