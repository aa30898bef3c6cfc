// Package report_repo provides the PostgreSQL report cache.
package report_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/reports"
	"tokopos/internal/infrastructure/storage/postgres"
)

const (
	movementTable     = "report_stock_movement"
	mutationTable     = "report_stock_mutation"
	mutationRowsTable = "report_stock_mutation_rows"
)

// CacheRepo implements reports.CacheRepository.
//
// Movement timelines are stored as one row per cache key with the timeline as
// JSONB; mutation summaries keep their per-product rows relational so they
// can be bulk-loaded over COPY and queried individually.
type CacheRepo struct {
	txm      *postgres.TxManager
	inserter *postgres.BatchInserter
	builder  squirrel.StatementBuilderType
}

// NewCacheRepo creates a new report cache repository.
func NewCacheRepo(txm *postgres.TxManager) *CacheRepo {
	return &CacheRepo{
		txm:      txm,
		inserter: postgres.NewBatchInserter(txm),
		builder:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// UpsertMovement overwrites the cached movement report for its key.
func (r *CacheRepo) UpsertMovement(ctx context.Context, report *reports.StockMovement) error {
	rows, err := json.Marshal(report.Rows)
	if err != nil {
		return fmt.Errorf("marshal movement rows: %w", err)
	}

	sql := `
		INSERT INTO report_stock_movement (
			branch_id, product_id, start_date, end_date,
			product_name, initial_stock, current_stock, rows, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (branch_id, product_id, start_date, end_date) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			initial_stock = EXCLUDED.initial_stock,
			current_stock = EXCLUDED.current_stock,
			rows = EXCLUDED.rows,
			generated_at = EXCLUDED.generated_at
	`

	_, err = r.txm.GetQuerier(ctx).Exec(ctx, sql,
		report.BranchID, report.ProductID, report.StartDate, report.EndDate,
		report.ProductName, report.InitialStock, report.CurrentStock, rows, report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert movement report: %w", err)
	}
	return nil
}

// movementRow is the scan target for the movement cache table.
type movementRow struct {
	BranchID     id.ID          `db:"branch_id"`
	ProductID    id.ID          `db:"product_id"`
	StartDate    time.Time      `db:"start_date"`
	EndDate      time.Time      `db:"end_date"`
	ProductName  string         `db:"product_name"`
	InitialStock types.Quantity `db:"initial_stock"`
	CurrentStock types.Quantity `db:"current_stock"`
	Rows         []byte         `db:"rows"`
	GeneratedAt  time.Time      `db:"generated_at"`
}

// GetMovement returns the cached movement report for the key, or nil on a
// cache miss.
func (r *CacheRepo) GetMovement(ctx context.Context, key reports.MovementKey) (*reports.StockMovement, error) {
	q := r.builder.Select(
		"branch_id", "product_id", "start_date", "end_date",
		"product_name", "initial_stock", "current_stock", "rows", "generated_at",
	).From(movementTable).
		Where(squirrel.Eq{
			"branch_id":  key.BranchID,
			"product_id": key.ProductID,
			"start_date": key.StartDate,
			"end_date":   key.EndDate,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row movementRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement report: %w", err)
	}

	report := &reports.StockMovement{
		BranchID:     row.BranchID,
		ProductID:    row.ProductID,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		ProductName:  row.ProductName,
		InitialStock: row.InitialStock,
		CurrentStock: row.CurrentStock,
		GeneratedAt:  row.GeneratedAt,
	}
	if err := json.Unmarshal(row.Rows, &report.Rows); err != nil {
		return nil, fmt.Errorf("unmarshal movement rows: %w", err)
	}
	return report, nil
}

// UpsertMutation overwrites the cached mutation report for its key. Header
// upsert, row delete and COPY reload happen in one transaction so readers
// never observe a half-replaced period.
func (r *CacheRepo) UpsertMutation(ctx context.Context, report *reports.StockMutation) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		headerSQL := `
			INSERT INTO report_stock_mutation (branch_id, start_date, end_date, generated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (branch_id, start_date, end_date) DO UPDATE SET
				generated_at = EXCLUDED.generated_at
		`
		_, err := r.txm.GetQuerier(ctx).Exec(ctx, headerSQL,
			report.BranchID, report.StartDate, report.EndDate, report.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert mutation header: %w", err)
		}

		deleteSQL := `
			DELETE FROM report_stock_mutation_rows
			WHERE branch_id = $1 AND start_date = $2 AND end_date = $3
		`
		_, err = r.txm.GetQuerier(ctx).Exec(ctx, deleteSQL,
			report.BranchID, report.StartDate, report.EndDate,
		)
		if err != nil {
			return fmt.Errorf("delete mutation rows: %w", err)
		}

		if len(report.Rows) == 0 {
			return nil
		}

		columns := []string{
			"branch_id", "start_date", "end_date",
			"product_id", "product_name", "sku",
			"initial_stock", "stock_in_from_po", "stock_sold", "stock_returned",
			"final_stock_calculated", "current_live_stock",
		}
		rows := make([][]any, 0, len(report.Rows))
		for _, row := range report.Rows {
			rows = append(rows, []any{
				report.BranchID, report.StartDate, report.EndDate,
				row.ProductID, row.ProductName, row.SKU,
				row.InitialStock, row.StockInFromPO, row.StockSold, row.StockReturned,
				row.FinalStockCalculated, row.CurrentLiveStock,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, mutationRowsTable, columns, rows); err != nil {
			return fmt.Errorf("copy mutation rows: %w", err)
		}
		return nil
	})
}

// GetMutation returns the cached mutation report for the key, or nil on a
// cache miss.
func (r *CacheRepo) GetMutation(ctx context.Context, key reports.MutationKey) (*reports.StockMutation, error) {
	headerQ := r.builder.Select("branch_id", "start_date", "end_date", "generated_at").
		From(mutationTable).
		Where(squirrel.Eq{
			"branch_id":  key.BranchID,
			"start_date": key.StartDate,
			"end_date":   key.EndDate,
		}).Limit(1)

	sql, args, err := headerQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var report reports.StockMutation
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &report, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get mutation header: %w", err)
	}

	rowsQ := r.builder.Select(
		"product_id", "product_name", "sku",
		"initial_stock", "stock_in_from_po", "stock_sold", "stock_returned",
		"final_stock_calculated", "current_live_stock",
	).From(mutationRowsTable).
		Where(squirrel.Eq{
			"branch_id":  key.BranchID,
			"start_date": key.StartDate,
			"end_date":   key.EndDate,
		}).
		OrderBy("product_name", "product_id")

	sql, args, err = rowsQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &report.Rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select mutation rows: %w", err)
	}
	return &report, nil
}

// Ensure interface compliance.
var _ reports.CacheRepository = (*CacheRepo)(nil)
