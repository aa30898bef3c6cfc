// Package reports builds read-only inventory reconstructions from the stock
// ledger: a per-product movement timeline and a per-branch mutation summary.
// Reports never mutate inventory; they replay what the ledger already holds.
package reports

import (
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Row kinds for the stock movement report.
const (
	RowInitialStock = "INITIAL_STOCK"
	RowMovement     = "MOVEMENT"
)

// MovementRow is one line of the stock movement timeline.
type MovementRow struct {
	RowType        string         `db:"row_type" json:"rowType"`
	EntryID        *id.ID         `db:"entry_id" json:"entryId,omitempty"`
	OccurredAt     time.Time      `db:"occurred_at" json:"occurredAt"`
	Type           string         `db:"mutation_type" json:"type"`
	Description    string         `db:"description" json:"description"`
	QuantityChange types.Quantity `db:"quantity_change" json:"quantityChange"`
	StockBefore    types.Quantity `db:"stock_before" json:"stockBefore"`
	StockAfter     types.Quantity `db:"stock_after" json:"stockAfter"`
}

// StockMovement is the single-product movement report: a synthetic initial
// row followed by every ledger entry in range.
type StockMovement struct {
	BranchID    id.ID     `json:"branchId"`
	ProductID   id.ID     `json:"productId"`
	ProductName string    `json:"productName"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`

	InitialStock types.Quantity `json:"initialStock"`
	CurrentStock types.Quantity `json:"currentStock"`

	Rows []MovementRow `json:"rows"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// MutationRow summarizes one product's movement buckets for the period.
//
// FinalStockCalculated is initial + in - sold + returned; manual adjustments
// and opname corrections are deliberately outside the formula, so a gap
// between it and CurrentLiveStock surfaces both those and any missing ledger
// entries.
type MutationRow struct {
	ProductID   id.ID   `db:"product_id" json:"productId"`
	ProductName string  `db:"product_name" json:"productName"`
	SKU         *string `db:"sku" json:"sku,omitempty"`

	InitialStock  types.Quantity `db:"initial_stock" json:"initialStock"`
	StockInFromPO types.Quantity `db:"stock_in_from_po" json:"stockInFromPo"`
	StockSold     types.Quantity `db:"stock_sold" json:"stockSold"`
	StockReturned types.Quantity `db:"stock_returned" json:"stockReturned"`

	FinalStockCalculated types.Quantity `db:"final_stock_calculated" json:"finalStockCalculated"`
	CurrentLiveStock     types.Quantity `db:"current_live_stock" json:"currentLiveStock"`
}

// Drift reports the gap between the calculated and live stock.
func (r MutationRow) Drift() types.Quantity {
	return r.CurrentLiveStock - r.FinalStockCalculated
}

// StockMutation is the per-branch mutation summary for a period.
type StockMutation struct {
	BranchID  id.ID     `json:"branchId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Rows []MutationRow `json:"rows"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// MovementKey is the natural cache key for a stock movement report.
type MovementKey struct {
	BranchID  id.ID
	ProductID id.ID
	StartDate time.Time
	EndDate   time.Time
}

// MutationKey is the natural cache key for a stock mutation report.
type MutationKey struct {
	BranchID  id.ID
	StartDate time.Time
	EndDate   time.Time
}
