// Package ledger_repo provides the PostgreSQL implementation of the stock
// mutation ledger.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/infrastructure/storage/postgres"
)

const entriesTable = "stock_ledger_entries"

var entryColumns = []string{
	"id", "seq", "branch_id", "product_id", "product_name",
	"quantity_change", "stock_before", "stock_after",
	"type", "description", "reference_kind", "reference_id",
	"user_id", "user_name", "created_at",
}

// LedgerRepo implements ledger.Repository.
//
// seq is a BIGSERIAL assigned on insert; (created_at, seq) is the total order
// every read method returns. The table carries no UPDATE or DELETE paths.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert appends one entry and fills in its database-assigned seq.
func (r *LedgerRepo) Insert(ctx context.Context, e *ledger.Entry) error {
	sql := `
		INSERT INTO stock_ledger_entries (
			id, branch_id, product_id, product_name,
			quantity_change, stock_before, stock_after,
			type, description, reference_kind, reference_id,
			user_id, user_name, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq
	`

	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql,
		e.ID, e.BranchID, e.ProductID, e.ProductName,
		e.QuantityChange, e.StockBefore, e.StockAfter,
		e.Type, e.Description, e.ReferenceKind, e.ReferenceID,
		e.UserID, e.UserName, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetLatest returns the most recent entry for (branch, product), or nil.
func (r *LedgerRepo) GetLatest(ctx context.Context, branchID, productID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{
			"branch_id":  branchID,
			"product_id": productID,
		}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(1)

	return r.getOne(ctx, q)
}

// GetLatestAtOrBefore returns the most recent entry with created_at <= t, or
// nil.
func (r *LedgerRepo) GetLatestAtOrBefore(ctx context.Context, branchID, productID id.ID, t time.Time) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{
			"branch_id":  branchID,
			"product_id": productID,
		}).
		Where(squirrel.LtOrEq{"created_at": t}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(1)

	return r.getOne(ctx, q)
}

// SumChangesAfter sums quantity_change over entries with created_at > t.
func (r *LedgerRepo) SumChangesAfter(ctx context.Context, branchID, productID id.ID, t time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(quantity_change), 0)
		FROM stock_ledger_entries
		WHERE branch_id = $1 AND product_id = $2 AND created_at > $3
	`

	var sum types.Quantity
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, branchID, productID, t).Scan(&sum)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum changes: %w", err)
	}
	return sum, nil
}

// ListByProduct returns entries for (branch, product) within [from, to] in
// (created_at, seq) order.
func (r *LedgerRepo) ListByProduct(ctx context.Context, branchID, productID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{
			"branch_id":  branchID,
			"product_id": productID,
		}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		OrderBy("created_at", "seq")

	return r.list(ctx, q)
}

// ListByBranch returns entries for a branch within [from, to] in
// (created_at, seq) order.
func (r *LedgerRepo) ListByBranch(ctx context.Context, branchID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		OrderBy("created_at", "seq")

	return r.list(ctx, q)
}

// ListByReference returns entries caused by one business object.
func (r *LedgerRepo) ListByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{
			"reference_kind": ref.Kind,
			"reference_id":   ref.ID,
		}).
		OrderBy("created_at", "seq")

	return r.list(ctx, q)
}

func (r *LedgerRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*ledger.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

func (r *LedgerRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]*ledger.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []*ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	return entries, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
