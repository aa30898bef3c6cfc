// Package sales_repo provides the read-only PostgreSQL view over sale
// records the reconciliation core consumes.
package sales_repo

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/sales"
	"tokopos/internal/infrastructure/storage/postgres"
)

// SalesRepo implements sales.Reader.
type SalesRepo struct {
	txm *postgres.TxManager
}

// NewSalesRepo creates a new sales reader.
func NewSalesRepo(txm *postgres.TxManager) *SalesRepo {
	return &SalesRepo{txm: txm}
}

// SumSoldByProduct sums completed sale line quantities per product for the
// branch within [from, to].
func (r *SalesRepo) SumSoldByProduct(ctx context.Context, branchID id.ID, from, to time.Time) (map[id.ID]types.Quantity, error) {
	sql := `
		SELECT si.product_id, COALESCE(SUM(si.quantity), 0)
		FROM doc_sale_items si
		JOIN doc_sales s ON s.id = si.sale_id
		WHERE s.branch_id = $1
		  AND s.status = 'completed'
		  AND s.completed_at >= $2
		  AND s.completed_at <= $3
		GROUP BY si.product_id
	`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sold quantities: %w", err)
	}
	defer rows.Close()

	sums := make(map[id.ID]types.Quantity)
	for rows.Next() {
		var (
			productID id.ID
			quantity  types.Quantity
		)
		if err := rows.Scan(&productID, &quantity); err != nil {
			return nil, fmt.Errorf("scan sold quantity: %w", err)
		}
		sums[productID] = quantity
	}

	return sums, rows.Err()
}

// Ensure interface compliance.
var _ sales.Reader = (*SalesRepo)(nil)
