package product

import (
	"context"
	"fmt"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/tx"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/ledger"
	"tokopos/pkg/logger"
)

// Service provides business operations for the product catalog.
type Service struct {
	repo   Repository
	ledger *ledger.Service
	txm    tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txm tx.Manager) *Service {
	return &Service{repo: repo, ledger: ledgerSvc, txm: txm}
}

// Create persists a new product. If the seed quantity is positive an opening
// adjustment entry is appended so the ledger chain starts at the seed value
// rather than with an unexplained balance.
func (s *Service) Create(ctx context.Context, p *Product, actor ledger.Actor) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	seed := p.Quantity
	p.Quantity = 0

	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		if seed == 0 {
			return nil
		}
		_, err := s.ledger.Append(ctx, ledger.AppendCommand{
			BranchID:    p.BranchID,
			ProductID:   p.ID,
			Delta:       seed,
			Type:        ledger.TypeAdjustment,
			Description: "Opening stock",
			Actor:       actor,
		})
		if err != nil {
			return fmt.Errorf("opening stock entry: %w", err)
		}
		p.Quantity = seed
		return nil
	})
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// Update persists catalog field changes. Quantity is never written here; it
// only moves through AdjustQuantity and the other ledger-producing services.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}
		p.Quantity = current.Quantity
		p.Touch()
		return s.repo.Update(ctx, p)
	})
}

// Delete soft-deletes a product. Historical ledger and report rows keep
// referencing it.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	return s.repo.Delete(ctx, productID)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

// AdjustQuantity applies a manual signed stock correction through the ledger.
// A zero delta is rejected; an adjustment that would drive stock negative
// fails inside ledger.Append.
func (s *Service) AdjustQuantity(ctx context.Context, productID id.ID, delta types.Quantity, reason string, actor ledger.Actor) (*ledger.Entry, error) {
	if delta == 0 {
		return nil, apperror.NewValidation("adjustment delta must not be zero").
			WithDetail("field", "delta")
	}
	if reason == "" {
		return nil, apperror.NewValidation("adjustment reason is required").
			WithDetail("field", "reason")
	}

	var entry *ledger.Entry
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		entry, err = s.ledger.Append(ctx, ledger.AppendCommand{
			BranchID:    p.BranchID,
			ProductID:   productID,
			Delta:       delta,
			Type:        ledger.TypeAdjustment,
			Description: reason,
			Actor:       actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"delta", delta,
		"stock_after", entry.StockAfter,
	)
	return entry, nil
}
