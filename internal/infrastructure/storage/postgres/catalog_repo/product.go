// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

var productColumns = []string{
	"id", "branch_id", "name", "sku", "quantity",
	"cost_price", "price", "category_id",
	"deletion_mark", "version", "created_at", "updated_at",
}

// ProductRepo implements product.Repository. It also implements
// ledger.ProductStore so the ledger service locks and writes the same rows
// the catalog manages.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.BranchID, p.Name, p.SKU, p.Quantity,
			p.CostPrice, p.Price, p.CategoryID,
			p.DeletionMark, p.Version, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by id.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetForUpdate retrieves a product with a row lock. Must run inside a
// transaction; the lock is held until commit.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	sql := `
		SELECT id, branch_id, name, sku, quantity,
		       cost_price, price, category_id,
		       deletion_mark, version, created_at, updated_at
		FROM cat_products
		WHERE id = $1
		FOR UPDATE
	`

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, productID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return &p, nil
}

// Update persists product changes with an optimistic version check.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("sku", p.SKU).
		Set("cost_price", p.CostPrice).
		Set("price", p.Price).
		Set("category_id", p.CategoryID).
		Set("deletion_mark", p.DeletionMark).
		Set("version", p.Version).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": p.Version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID)
	}
	return nil
}

// Delete marks a product as deleted. Ledger history keeps its snapshot copy
// of the name, so soft deletion never breaks reports.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Update(productsTable).
		Set("deletion_mark", true).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// GetBySKU resolves a product by SKU within a branch.
func (r *ProductRepo) GetBySKU(ctx context.Context, branchID id.ID, sku string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{
			"branch_id": branchID,
			"sku":       sku,
		}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", sku)
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return &p, nil
}

// List retrieves products with filtering.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	q := r.builder.Select(productColumns...).From(productsTable)

	if !id.IsNil(filter.BranchID) {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + filter.Search + "%"},
			squirrel.ILike{"sku": "%" + filter.Search + "%"},
		})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}

	q = q.OrderBy("name")

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

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	return products, nil
}

// GetQuantityForUpdate locks the product row and returns the snapshot the
// ledger needs.
func (r *ProductRepo) GetQuantityForUpdate(ctx context.Context, productID id.ID) (ledger.ProductSnapshot, error) {
	sql := `
		SELECT id AS product_id, branch_id, name, quantity
		FROM cat_products
		WHERE id = $1
		FOR UPDATE
	`

	var snap ledger.ProductSnapshot
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &snap, sql, productID); err != nil {
		if pgxscan.NotFound(err) {
			return snap, apperror.NewNotFound("product", productID)
		}
		return snap, fmt.Errorf("lock product: %w", err)
	}
	return snap, nil
}

// GetQuantity returns the live quantity without locking.
func (r *ProductRepo) GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sql := `SELECT quantity FROM cat_products WHERE id = $1`

	var quantity types.Quantity
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, productID).Scan(&quantity)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewNotFound("product", productID)
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return quantity, nil
}

// SetQuantity overwrites the live quantity. Callers append a ledger entry in
// the same transaction.
func (r *ProductRepo) SetQuantity(ctx context.Context, productID id.ID, quantity types.Quantity) error {
	sql := `UPDATE cat_products SET quantity = $2, updated_at = now() WHERE id = $1`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, productID, quantity)
	if err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// Ensure interface compliance.
var (
	_ product.Repository  = (*ProductRepo)(nil)
	_ ledger.ProductStore = (*ProductRepo)(nil)
)
