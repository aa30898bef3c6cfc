package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/infrastructure/storage/postgres"
)

const branchesTable = "cat_branches"

var branchColumns = []string{
	"id", "tenant_id", "name", "address", "phone",
	"is_active", "version", "created_at", "updated_at",
}

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo(txm *postgres.TxManager) *BranchRepo {
	return &BranchRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new branch.
func (r *BranchRepo) Create(ctx context.Context, b *branch.Branch) error {
	q := r.builder.Insert(branchesTable).
		Columns(branchColumns...).
		Values(
			b.ID, b.TenantID, b.Name, b.Address, b.Phone,
			b.IsActive, b.Version, b.CreatedAt, b.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

// GetByID retrieves a branch by id.
func (r *BranchRepo) GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error) {
	q := r.builder.Select(branchColumns...).
		From(branchesTable).
		Where(squirrel.Eq{"id": branchID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b branch.Branch
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("branch", branchID)
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}

// Update persists branch changes with an optimistic version check.
func (r *BranchRepo) Update(ctx context.Context, b *branch.Branch) error {
	q := r.builder.Update(branchesTable).
		Set("name", b.Name).
		Set("address", b.Address).
		Set("phone", b.Phone).
		Set("is_active", b.IsActive).
		Set("version", b.Version).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID}).
		Where(squirrel.Eq{"version": b.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("branch", b.ID)
	}
	return nil
}

// ListByTenant returns the tenant's branches.
func (r *BranchRepo) ListByTenant(ctx context.Context, tenantID id.ID) ([]*branch.Branch, error) {
	q := r.builder.Select(branchColumns...).
		From(branchesTable).
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var branches []*branch.Branch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &branches, sql, args...); err != nil {
		return nil, fmt.Errorf("select branches: %w", err)
	}
	return branches, nil
}

// ListActive returns every active branch across tenants. Used by the nightly
// report batch.
func (r *BranchRepo) ListActive(ctx context.Context) ([]*branch.Branch, error) {
	q := r.builder.Select(branchColumns...).
		From(branchesTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("tenant_id", "name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var branches []*branch.Branch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &branches, sql, args...); err != nil {
		return nil, fmt.Errorf("select active branches: %w", err)
	}
	return branches, nil
}

// Ensure interface compliance.
var _ branch.Repository = (*BranchRepo)(nil)
