package ledger

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/pkg/logger"
)

// StockAt answers "what was the product's stock at branch B at time t?"
// without requiring a snapshot at every timestamp.
//
// Algorithm:
//  1. Take the most recent ledger entry at or before t; its stock_after is
//     the answer.
//  2. With no history at or before t, reconstruct backward from the live
//     anchor: live quantity minus the sum of all changes after t, clamped
//     at 0.
//
// A negative pre-clamp reconstruction means the chain is missing entries; it
// is logged as a corruption signal, not treated as a valid state.
func (s *Service) StockAt(ctx context.Context, branchID, productID id.ID, t time.Time) (types.Quantity, error) {
	entry, err := s.repo.GetLatestAtOrBefore(ctx, branchID, productID, t)
	if err != nil {
		return 0, fmt.Errorf("latest entry at or before %s: %w", t.Format(time.RFC3339), err)
	}
	if entry != nil {
		return entry.StockAfter, nil
	}

	live, err := s.products.GetQuantity(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("live quantity: %w", err)
	}

	laterChanges, err := s.repo.SumChangesAfter(ctx, branchID, productID, t)
	if err != nil {
		return 0, fmt.Errorf("sum changes after %s: %w", t.Format(time.RFC3339), err)
	}

	reconstructed := live - laterChanges
	if reconstructed < 0 {
		logger.Warn(ctx, "negative stock reconstruction, ledger chain is incomplete",
			"branch_id", branchID,
			"product_id", productID,
			"at", t,
			"reconstructed", reconstructed,
		)
	}

	return types.ClampQuantity(reconstructed, 0), nil
}
