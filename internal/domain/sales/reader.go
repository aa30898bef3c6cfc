// Package sales exposes the read-only slice of the sales subsystem the
// reconciliation core consumes. Sale and purchase order management itself
// lives outside this repository.
package sales

import (
	"context"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Reader sums sold quantities from completed sale line items.
//
// The stock mutation report uses it as a secondary source of truth for
// stock_sold when a period contains no sale-type ledger entries (a tolerated
// gap in older data).
type Reader interface {
	// SumSoldByProduct returns, per product, the total quantity on completed
	// sale lines for the branch within [from, to].
	SumSoldByProduct(ctx context.Context, branchID id.ID, from, to time.Time) (map[id.ID]types.Quantity, error)
}
