package ledger

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/pkg/logger"
)

// Service provides ledger operations. Append must run inside a caller-managed
// transaction; the service itself never begins one, so a document operation
// can reconcile several products atomically.
type Service struct {
	repo     Repository
	products ProductStore
}

// NewService creates a new ledger service.
func NewService(repo Repository, products ProductStore) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// AppendCommand describes one inventory change to record.
//
// The caller supplies only the signed delta. stock_before comes from a
// freshly-locked read of the live quantity and stock_after is computed
// internally; a precomputed stock_after is never accepted.
type AppendCommand struct {
	BranchID    id.ID
	ProductID   id.ID
	Delta       types.Quantity
	Type        MutationType
	Description string
	Reference   Reference
	Actor       Actor
}

// Append locks the product row, records the change as a ledger entry and
// moves the live quantity to the entry's stock_after. Both writes commit or
// roll back together with the surrounding transaction.
func (s *Service) Append(ctx context.Context, cmd AppendCommand) (*Entry, error) {
	snap, err := s.products.GetQuantityForUpdate(ctx, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("lock product %s: %w", cmd.ProductID, err)
	}

	entry, err := newEntry(
		cmd.BranchID,
		cmd.ProductID,
		snap.Name,
		snap.Quantity,
		cmd.Delta,
		cmd.Type,
		cmd.Description,
		cmd.Reference,
		cmd.Actor,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert ledger entry: %w", err)
	}

	if err := s.products.SetQuantity(ctx, cmd.ProductID, entry.StockAfter); err != nil {
		return nil, fmt.Errorf("set product quantity: %w", err)
	}

	logger.Debug(ctx, "ledger entry appended",
		"product_id", cmd.ProductID,
		"type", cmd.Type,
		"change", cmd.Delta,
		"stock_after", entry.StockAfter,
	)

	return entry, nil
}

// History returns the entries for (branch, product) in [from, to] in
// (created_at, seq) order.
func (s *Service) History(ctx context.Context, branchID, productID id.ID, from, to time.Time) ([]*Entry, error) {
	return s.repo.ListByProduct(ctx, branchID, productID, from, to)
}

// ByReference returns the entries caused by one business object.
func (s *Service) ByReference(ctx context.Context, ref Reference) ([]*Entry, error) {
	return s.repo.ListByReference(ctx, ref)
}
