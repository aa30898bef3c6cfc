// Package opname_repo provides the PostgreSQL implementation of stock opname
// session persistence.
package opname_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/opname"
	"tokopos/internal/infrastructure/storage/postgres"
)

const (
	sessionsTable = "doc_opname_sessions"
	itemsTable    = "doc_opname_items"
)

var sessionColumns = []string{
	"id", "code", "branch_id", "status",
	"created_by", "created_by_name",
	"submitted_by", "submitted_by_name",
	"approved_by", "approved_by_name",
	"notes", "admin_notes",
	"total_items", "total_positive_adjustment", "total_negative_adjustment",
	"submitted_at", "approved_at", "rejected_at",
	"version", "created_at", "updated_at",
}

var itemColumns = []string{
	"id", "session_id", "product_id", "product_name",
	"system_quantity", "counted_quantity", "difference",
	"notes", "created_at", "updated_at",
}

// SessionRepo implements opname.Repository.
type SessionRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSessionRepo creates a new opname session repository.
func NewSessionRepo(txm *postgres.TxManager) *SessionRepo {
	return &SessionRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new session header.
func (r *SessionRepo) Create(ctx context.Context, s *opname.Session) error {
	q := r.builder.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			s.ID, s.Code, s.BranchID, s.Status,
			s.CreatedBy, s.CreatedByName,
			s.SubmittedBy, s.SubmittedByName,
			s.ApprovedBy, s.ApprovedByName,
			s.Notes, s.AdminNotes,
			s.TotalItems, s.TotalPositiveAdjustment, s.TotalNegativeAdjustment,
			s.SubmittedAt, s.ApprovedAt, s.RejectedAt,
			s.Version, s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a session header by id.
func (r *SessionRepo) GetByID(ctx context.Context, sessionID id.ID) (*opname.Session, error) {
	q := r.builder.Select(sessionColumns...).
		From(sessionsTable).
		Where(squirrel.Eq{"id": sessionID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s opname.Session
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock opname session", sessionID)
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// GetForUpdate retrieves the session header with a row lock, serializing
// concurrent state transitions of the same session.
func (r *SessionRepo) GetForUpdate(ctx context.Context, sessionID id.ID) (*opname.Session, error) {
	sql := `
		SELECT id, code, branch_id, status,
		       created_by, created_by_name,
		       submitted_by, submitted_by_name,
		       approved_by, approved_by_name,
		       notes, admin_notes,
		       total_items, total_positive_adjustment, total_negative_adjustment,
		       submitted_at, approved_at, rejected_at,
		       version, created_at, updated_at
		FROM doc_opname_sessions
		WHERE id = $1
		FOR UPDATE
	`

	var s opname.Session
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, sessionID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock opname session", sessionID)
		}
		return nil, fmt.Errorf("get session for update: %w", err)
	}
	return &s, nil
}

// Update persists session header changes with an optimistic version check.
func (r *SessionRepo) Update(ctx context.Context, s *opname.Session) error {
	q := r.builder.Update(sessionsTable).
		Set("status", s.Status).
		Set("submitted_by", s.SubmittedBy).
		Set("submitted_by_name", s.SubmittedByName).
		Set("approved_by", s.ApprovedBy).
		Set("approved_by_name", s.ApprovedByName).
		Set("notes", s.Notes).
		Set("admin_notes", s.AdminNotes).
		Set("total_items", s.TotalItems).
		Set("total_positive_adjustment", s.TotalPositiveAdjustment).
		Set("total_negative_adjustment", s.TotalNegativeAdjustment).
		Set("submitted_at", s.SubmittedAt).
		Set("approved_at", s.ApprovedAt).
		Set("rejected_at", s.RejectedAt).
		Set("version", s.Version).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID}).
		Where(squirrel.Eq{"version": s.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock opname session", s.ID)
	}
	return nil
}

// List retrieves session headers with filtering, newest first.
func (r *SessionRepo) List(ctx context.Context, filter opname.ListFilter) ([]*opname.Session, error) {
	q := r.builder.Select(sessionColumns...).From(sessionsTable)

	if !id.IsNil(filter.BranchID) {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}

	q = q.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sessions []*opname.Session
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sessions, sql, args...); err != nil {
		return nil, fmt.Errorf("select sessions: %w", err)
	}
	return sessions, nil
}

// GetItems returns the session's items ordered by product name.
func (r *SessionRepo) GetItems(ctx context.Context, sessionID id.ID) ([]opname.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("product_name", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []opname.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// GetItemByID retrieves one item.
func (r *SessionRepo) GetItemByID(ctx context.Context, itemID id.ID) (*opname.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item opname.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock opname item", itemID)
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &item, nil
}

// UpsertItem inserts or overwrites the item for (session, product). One row
// per product per session; recounting replaces the previous count.
func (r *SessionRepo) UpsertItem(ctx context.Context, item *opname.Item) error {
	sql := `
		INSERT INTO doc_opname_items (
			id, session_id, product_id, product_name,
			system_quantity, counted_quantity, difference,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (session_id, product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			system_quantity = EXCLUDED.system_quantity,
			counted_quantity = EXCLUDED.counted_quantity,
			difference = EXCLUDED.difference,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		item.ID, item.SessionID, item.ProductID, item.ProductName,
		item.SystemQuantity, item.CountedQuantity, item.Difference,
		item.Notes, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}
	return nil
}

// DeleteItem removes one item from a session.
func (r *SessionRepo) DeleteItem(ctx context.Context, sessionID, itemID id.ID) error {
	q := r.builder.Delete(itemsTable).
		Where(squirrel.Eq{
			"id":         itemID,
			"session_id": sessionID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock opname item", itemID)
	}
	return nil
}

// Ensure interface compliance.
var _ opname.Repository = (*SessionRepo)(nil)
