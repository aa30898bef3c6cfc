package reports

import (
	"context"
	"fmt"
	"time"

	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/sales"
	"tokopos/pkg/logger"
)

// Epoch is the fixed start date the nightly batch uses as the period start
// for regenerated report caches.
var Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Service builds stock movement and stock mutation reports.
type Service struct {
	entries  ledger.Repository
	resolver *ledger.Service
	products product.Repository
	branches branch.Repository
	sales    sales.Reader
	cache    CacheRepository
}

// NewService creates a new report service.
func NewService(
	entries ledger.Repository,
	resolver *ledger.Service,
	products product.Repository,
	branches branch.Repository,
	salesReader sales.Reader,
	cache CacheRepository,
) *Service {
	return &Service{
		entries:  entries,
		resolver: resolver,
		products: products,
		branches: branches,
		sales:    salesReader,
		cache:    cache,
	}
}

// StockMovement returns the movement report for the key, serving the cached
// row when one exists. refresh forces a rebuild and overwrites the cache.
func (s *Service) StockMovement(ctx context.Context, key MovementKey, refresh bool) (*StockMovement, error) {
	if !refresh {
		cached, err := s.cache.GetMovement(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read movement cache: %w", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	report, err := s.BuildStockMovement(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.cache.UpsertMovement(ctx, report); err != nil {
		return nil, fmt.Errorf("cache movement report: %w", err)
	}
	return report, nil
}

// BuildStockMovement replays the ledger for one product over [StartDate,
// EndDate]. initial_stock is the resolved level at the end of the day before
// StartDate and is emitted as a synthetic first row; current_stock is the
// live product quantity at build time.
func (s *Service) BuildStockMovement(ctx context.Context, key MovementKey) (*StockMovement, error) {
	p, err := s.products.GetByID(ctx, key.ProductID)
	if err != nil {
		return nil, err
	}

	initialAt := endOfDay(key.StartDate.AddDate(0, 0, -1))
	initial, err := s.resolver.StockAt(ctx, key.BranchID, key.ProductID, initialAt)
	if err != nil {
		return nil, fmt.Errorf("resolve initial stock: %w", err)
	}

	entries, err := s.entries.ListByProduct(ctx, key.BranchID, key.ProductID, key.StartDate, endOfDay(key.EndDate))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	rows := make([]MovementRow, 0, len(entries)+1)
	rows = append(rows, MovementRow{
		RowType:     RowInitialStock,
		OccurredAt:  initialAt,
		Description: "Initial stock",
		StockBefore: initial,
		StockAfter:  initial,
	})
	for _, e := range entries {
		entryID := e.ID
		rows = append(rows, MovementRow{
			RowType:        RowMovement,
			EntryID:        &entryID,
			OccurredAt:     e.CreatedAt,
			Type:           string(e.Type),
			Description:    e.Description,
			QuantityChange: e.QuantityChange,
			StockBefore:    e.StockBefore,
			StockAfter:     e.StockAfter,
		})
	}

	return &StockMovement{
		BranchID:     key.BranchID,
		ProductID:    key.ProductID,
		ProductName:  p.Name,
		StartDate:    key.StartDate,
		EndDate:      key.EndDate,
		InitialStock: initial,
		CurrentStock: p.Quantity,
		Rows:         rows,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// StockMutation returns the mutation summary for the key, serving the cached
// row when one exists. refresh forces a rebuild and overwrites the cache.
func (s *Service) StockMutation(ctx context.Context, key MutationKey, refresh bool) (*StockMutation, error) {
	if !refresh {
		cached, err := s.cache.GetMutation(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read mutation cache: %w", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	report, err := s.BuildStockMutation(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.cache.UpsertMutation(ctx, report); err != nil {
		return nil, fmt.Errorf("cache mutation report: %w", err)
	}
	return report, nil
}

// BuildStockMutation summarizes every product in the branch over [StartDate,
// EndDate]: initial stock, purchase receipts in, sales out, returns back in,
// plus the calculated-vs-live comparison.
//
// Products with no sale-type ledger entries in the period fall back to the
// completed-sale line sums for stock_sold. Periods predating full ledger
// coverage would otherwise report zero sold.
func (s *Service) BuildStockMutation(ctx context.Context, key MutationKey) (*StockMutation, error) {
	prods, err := s.products.List(ctx, product.ListFilter{BranchID: key.BranchID})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	periodEnd := endOfDay(key.EndDate)
	entries, err := s.entries.ListByBranch(ctx, key.BranchID, key.StartDate, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	type buckets struct {
		in, sold, returned types.Quantity
		saleSeen           bool
	}
	byProduct := make(map[id.ID]*buckets, len(prods))
	for _, e := range entries {
		b := byProduct[e.ProductID]
		if b == nil {
			b = &buckets{}
			byProduct[e.ProductID] = b
		}
		switch e.Type {
		case ledger.TypePurchase:
			b.in += e.QuantityChange
		case ledger.TypeSale:
			b.sold += types.AbsQuantity(e.QuantityChange)
			b.saleSeen = true
		case ledger.TypeSaleReturn, ledger.TypeDeletedSaleRestock:
			b.returned += e.QuantityChange
		}
	}

	// Fetched once, only if at least one product needs the fallback.
	var soldFallback map[id.ID]types.Quantity

	initialAt := endOfDay(key.StartDate.AddDate(0, 0, -1))
	rows := make([]MutationRow, 0, len(prods))
	for _, p := range prods {
		initial, err := s.resolver.StockAt(ctx, key.BranchID, p.ID, initialAt)
		if err != nil {
			return nil, fmt.Errorf("resolve initial stock for %s: %w", p.ID, err)
		}

		b := byProduct[p.ID]
		if b == nil {
			b = &buckets{}
		}

		sold := b.sold
		if !b.saleSeen {
			if soldFallback == nil {
				soldFallback, err = s.sales.SumSoldByProduct(ctx, key.BranchID, key.StartDate, periodEnd)
				if err != nil {
					return nil, fmt.Errorf("sum sold fallback: %w", err)
				}
			}
			sold = soldFallback[p.ID]
		}

		rows = append(rows, MutationRow{
			ProductID:            p.ID,
			ProductName:          p.Name,
			SKU:                  p.SKU,
			InitialStock:         initial,
			StockInFromPO:        b.in,
			StockSold:            sold,
			StockReturned:        b.returned,
			FinalStockCalculated: initial + b.in - sold + b.returned,
			CurrentLiveStock:     p.Quantity,
		})
	}

	return &StockMutation{
		BranchID:    key.BranchID,
		StartDate:   key.StartDate,
		EndDate:     key.EndDate,
		Rows:        rows,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// RegenerateAll rebuilds the cached reports for every active branch with the
// fixed epoch start. Failures are logged per branch and do not stop the
// batch.
func (s *Service) RegenerateAll(ctx context.Context, now time.Time) error {
	branches, err := s.branches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list branches: %w", err)
	}

	end := now.UTC().Truncate(24 * time.Hour)
	failed := 0
	for _, b := range branches {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := MutationKey{BranchID: b.ID, StartDate: Epoch, EndDate: end}
		if _, err := s.StockMutation(ctx, key, true); err != nil {
			failed++
			logger.Error(ctx, "regenerate mutation report failed", "branch_id", b.ID, "error", err)
			continue
		}

		prods, err := s.products.List(ctx, product.ListFilter{BranchID: b.ID})
		if err != nil {
			failed++
			logger.Error(ctx, "list products for regeneration failed", "branch_id", b.ID, "error", err)
			continue
		}
		for _, p := range prods {
			mk := MovementKey{BranchID: b.ID, ProductID: p.ID, StartDate: Epoch, EndDate: end}
			if _, err := s.StockMovement(ctx, mk, true); err != nil {
				failed++
				logger.Error(ctx, "regenerate movement report failed",
					"branch_id", b.ID, "product_id", p.ID, "error", err)
			}
		}
	}

	logger.Info(ctx, "report regeneration finished", "branches", len(branches), "failed", failed)
	return nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
