package product

import (
	"context"
	"testing"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/ledger"
)

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memRepo backs both the catalog repository and the ledger's product store.
type memRepo struct {
	products map[id.ID]*Product
}

func newMemRepo() *memRepo {
	return &memRepo{products: make(map[id.ID]*Product)}
}

func (m *memRepo) Create(ctx context.Context, p *Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) Update(ctx context.Context, p *Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID)
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, productID id.ID) error {
	p, ok := m.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.DeletionMark = true
	return nil
}

func (m *memRepo) GetForUpdate(ctx context.Context, productID id.ID) (*Product, error) {
	return m.GetByID(ctx, productID)
}

func (m *memRepo) SetQuantity(ctx context.Context, productID id.ID, quantity types.Quantity) error {
	p, ok := m.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.Quantity = quantity
	return nil
}

func (m *memRepo) GetBySKU(ctx context.Context, branchID id.ID, sku string) (*Product, error) {
	for _, p := range m.products {
		if p.BranchID == branchID && p.SKU != nil && *p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (m *memRepo) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	var out []*Product
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) GetQuantityForUpdate(ctx context.Context, productID id.ID) (ledger.ProductSnapshot, error) {
	p, ok := m.products[productID]
	if !ok {
		return ledger.ProductSnapshot{}, apperror.NewNotFound("product", productID)
	}
	return ledger.ProductSnapshot{ProductID: p.ID, BranchID: p.BranchID, Name: p.Name, Quantity: p.Quantity}, nil
}

func (m *memRepo) GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	p, ok := m.products[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return p.Quantity, nil
}

type memEntries struct {
	entries []*ledger.Entry
}

func (m *memEntries) Insert(ctx context.Context, e *ledger.Entry) error {
	e.Seq = int64(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return nil
}

func (m *memEntries) GetLatest(ctx context.Context, branchID, productID id.ID) (*ledger.Entry, error) {
	return nil, nil
}

func (m *memEntries) GetLatestAtOrBefore(ctx context.Context, branchID, productID id.ID, t time.Time) (*ledger.Entry, error) {
	return nil, nil
}

func (m *memEntries) SumChangesAfter(ctx context.Context, branchID, productID id.ID, t time.Time) (types.Quantity, error) {
	return 0, nil
}

func (m *memEntries) ListByProduct(ctx context.Context, branchID, productID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	return nil, nil
}

func (m *memEntries) ListByBranch(ctx context.Context, branchID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	return nil, nil
}

func (m *memEntries) ListByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Entry, error) {
	return nil, nil
}

func newTestService() (*Service, *memRepo, *memEntries) {
	repo := newMemRepo()
	entries := &memEntries{}
	return NewService(repo, ledger.NewService(entries, repo), passTx{}), repo, entries
}

func TestCreate_SeedQuantityOpensLedger(t *testing.T) {
	svc, repo, entries := newTestService()
	ctx := context.Background()

	p := New(id.New(), "Kopi Susu", 25)
	if err := svc.Create(ctx, p, ledger.Actor{UserName: "Budi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Quantity != 25 {
		t.Errorf("quantity = %d, want seed 25", p.Quantity)
	}
	if got := repo.products[p.ID].Quantity; got != 25 {
		t.Errorf("stored quantity = %d, want 25", got)
	}

	if len(entries.entries) != 1 {
		t.Fatalf("ledger entries = %d, want opening entry", len(entries.entries))
	}
	e := entries.entries[0]
	if e.Type != ledger.TypeAdjustment || e.StockBefore != 0 || e.StockAfter != 25 {
		t.Errorf("opening entry = %s %d->%d, want adjustment 0->25", e.Type, e.StockBefore, e.StockAfter)
	}
	if e.Description != "Opening stock" {
		t.Errorf("description = %q", e.Description)
	}
}

func TestCreate_ZeroSeedSkipsLedger(t *testing.T) {
	svc, _, entries := newTestService()

	p := New(id.New(), "Kopi Susu", 0)
	if err := svc.Create(context.Background(), p, ledger.Actor{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries.entries) != 0 {
		t.Errorf("ledger entries = %d, want none for zero seed", len(entries.entries))
	}
}

func TestUpdate_PreservesQuantity(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := New(id.New(), "Kopi Susu", 25)
	if err := svc.Create(ctx, p, ledger.Actor{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	edited := *p
	edited.Name = "Kopi Susu Gula Aren"
	edited.Quantity = 999 // must be ignored
	if err := svc.Update(ctx, &edited); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.products[p.ID]
	if stored.Name != "Kopi Susu Gula Aren" {
		t.Errorf("name not updated: %q", stored.Name)
	}
	if stored.Quantity != 25 {
		t.Errorf("quantity = %d, update must not move stock", stored.Quantity)
	}
	if stored.Version != p.Version+1 {
		t.Errorf("version = %d, want %d", stored.Version, p.Version+1)
	}
}

func TestAdjustQuantity(t *testing.T) {
	svc, repo, entries := newTestService()
	ctx := context.Background()
	actor := ledger.Actor{UserID: id.New(), UserName: "Budi"}

	p := New(id.New(), "Kopi Susu", 10)
	if err := svc.Create(ctx, p, actor); err != nil {
		t.Fatalf("create: %v", err)
	}

	entry, err := svc.AdjustQuantity(ctx, p.ID, -4, "damaged in storage", actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.QuantityChange != -4 || entry.StockBefore != 10 || entry.StockAfter != 6 {
		t.Errorf("entry = %d %d->%d, want -4 10->6",
			entry.QuantityChange, entry.StockBefore, entry.StockAfter)
	}
	if entry.Description != "damaged in storage" {
		t.Errorf("description = %q", entry.Description)
	}
	if got := repo.products[p.ID].Quantity; got != 6 {
		t.Errorf("live quantity = %d, want 6", got)
	}
	if len(entries.entries) != 2 {
		t.Errorf("ledger entries = %d, want opening plus adjustment", len(entries.entries))
	}
}

func TestAdjustQuantity_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p := New(id.New(), "Kopi Susu", 10)
	if err := svc.Create(ctx, p, ledger.Actor{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.AdjustQuantity(ctx, p.ID, 0, "reason", ledger.Actor{}); err == nil {
		t.Errorf("zero delta accepted")
	}
	if _, err := svc.AdjustQuantity(ctx, p.ID, -1, "", ledger.Actor{}); err == nil {
		t.Errorf("missing reason accepted")
	}
	if _, err := svc.AdjustQuantity(ctx, p.ID, -11, "shrinkage", ledger.Actor{}); err == nil {
		t.Errorf("adjustment below zero accepted")
	}
}
