package opname

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/audit"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/notify"
)

// --- fakes ---

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeSessionRepo struct {
	sessions map[id.ID]*Session
	items    map[id.ID]map[id.ID]Item // session -> item id -> item
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[id.ID]*Session),
		items:    make(map[id.ID]map[id.ID]Item),
	}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s *Session) error {
	cp := *s
	cp.Items = nil
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, sessionID id.ID) (*Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, apperror.NewNotFound("opname session", sessionID)
	}
	cp := *s
	cp.Items = nil
	return &cp, nil
}

func (f *fakeSessionRepo) GetForUpdate(ctx context.Context, sessionID id.ID) (*Session, error) {
	return f.GetByID(ctx, sessionID)
}

func (f *fakeSessionRepo) Update(ctx context.Context, s *Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return apperror.NewNotFound("opname session", s.ID)
	}
	cp := *s
	cp.Items = nil
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context, filter ListFilter) ([]*Session, error) {
	var out []*Session
	for _, s := range f.sessions {
		if !id.IsNil(filter.BranchID) && s.BranchID != filter.BranchID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && s.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && s.CreatedAt.After(*filter.DateTo) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSessionRepo) GetItems(ctx context.Context, sessionID id.ID) ([]Item, error) {
	var out []Item
	for _, it := range f.items[sessionID] {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeSessionRepo) GetItemByID(ctx context.Context, itemID id.ID) (*Item, error) {
	for _, byID := range f.items {
		if it, ok := byID[itemID]; ok {
			cp := it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("opname item", itemID)
}

func (f *fakeSessionRepo) UpsertItem(ctx context.Context, item *Item) error {
	byID := f.items[item.SessionID]
	if byID == nil {
		byID = make(map[id.ID]Item)
		f.items[item.SessionID] = byID
	}
	byID[item.ID] = *item
	return nil
}

func (f *fakeSessionRepo) DeleteItem(ctx context.Context, sessionID, itemID id.ID) error {
	byID := f.items[sessionID]
	if _, ok := byID[itemID]; !ok {
		return apperror.NewNotFound("opname item", itemID)
	}
	delete(byID, itemID)
	return nil
}

// fakeProductRepo backs both the catalog repository and the ledger's product
// store, mirroring how the real postgres repository serves both.
type fakeProductRepo struct {
	products map[id.ID]*product.Product
	locks    int
}

func newFakeProductRepo(products ...*product.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[id.ID]*product.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error {
	delete(f.products, productID)
	return nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	f.locks++
	return f.GetByID(ctx, productID)
}

func (f *fakeProductRepo) SetQuantity(ctx context.Context, productID id.ID, quantity types.Quantity) error {
	p, ok := f.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	p.Quantity = quantity
	return nil
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, branchID id.ID, sku string) (*product.Product, error) {
	for _, p := range f.products {
		if p.BranchID == branchID && p.SKU != nil && *p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", sku)
}

func (f *fakeProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProductRepo) GetQuantityForUpdate(ctx context.Context, productID id.ID) (ledger.ProductSnapshot, error) {
	f.locks++
	p, ok := f.products[productID]
	if !ok {
		return ledger.ProductSnapshot{}, apperror.NewNotFound("product", productID)
	}
	return ledger.ProductSnapshot{
		ProductID: p.ID,
		BranchID:  p.BranchID,
		Name:      p.Name,
		Quantity:  p.Quantity,
	}, nil
}

func (f *fakeProductRepo) GetQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	p, ok := f.products[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return p.Quantity, nil
}

type fakeBranchRepo struct {
	branches map[id.ID]*branch.Branch
}

func newFakeBranchRepo(branches ...*branch.Branch) *fakeBranchRepo {
	f := &fakeBranchRepo{branches: make(map[id.ID]*branch.Branch)}
	for _, b := range branches {
		f.branches[b.ID] = b
	}
	return f
}

func (f *fakeBranchRepo) Create(ctx context.Context, b *branch.Branch) error {
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchRepo) GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error) {
	b, ok := f.branches[branchID]
	if !ok {
		return nil, apperror.NewNotFound("branch", branchID)
	}
	return b, nil
}

func (f *fakeBranchRepo) Update(ctx context.Context, b *branch.Branch) error {
	f.branches[b.ID] = b
	return nil
}

func (f *fakeBranchRepo) ListByTenant(ctx context.Context, tenantID id.ID) ([]*branch.Branch, error) {
	var out []*branch.Branch
	for _, b := range f.branches {
		if b.TenantID == tenantID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBranchRepo) ListActive(ctx context.Context) ([]*branch.Branch, error) {
	var out []*branch.Branch
	for _, b := range f.branches {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeLedgerRepo struct {
	entries []*ledger.Entry
}

func (f *fakeLedgerRepo) Insert(ctx context.Context, e *ledger.Entry) error {
	e.Seq = int64(len(f.entries) + 1)
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedgerRepo) GetLatest(ctx context.Context, branchID, productID id.ID) (*ledger.Entry, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.BranchID == branchID && e.ProductID == productID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeLedgerRepo) GetLatestAtOrBefore(ctx context.Context, branchID, productID id.ID, t time.Time) (*ledger.Entry, error) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.BranchID == branchID && e.ProductID == productID && !e.CreatedAt.After(t) {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeLedgerRepo) SumChangesAfter(ctx context.Context, branchID, productID id.ID, t time.Time) (types.Quantity, error) {
	var sum types.Quantity
	for _, e := range f.entries {
		if e.BranchID == branchID && e.ProductID == productID && e.CreatedAt.After(t) {
			sum += e.QuantityChange
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) ListByProduct(ctx context.Context, branchID, productID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range f.entries {
		if e.BranchID == branchID && e.ProductID == productID &&
			!e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListByBranch(ctx context.Context, branchID id.ID, from, to time.Time) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range f.entries {
		if e.BranchID == branchID && !e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListByReference(ctx context.Context, ref ledger.Reference) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range f.entries {
		if e.Reference() == ref {
			out = append(out, e)
		}
	}
	return out, nil
}

type capturingNotifier struct {
	events []notify.OpnameNotification
}

func (c *capturingNotifier) NotifyOpname(ctx context.Context, n notify.OpnameNotification) {
	c.events = append(c.events, n)
}

type failingAuditor struct {
	calls int
}

func (f *failingAuditor) Record(ctx context.Context, entry audit.Entry) error {
	f.calls++
	return errors.New("audit store down")
}

// --- fixture ---

type fixture struct {
	svc      *Service
	repo     *fakeSessionRepo
	products *fakeProductRepo
	entries  *fakeLedgerRepo
	branches *fakeBranchRepo
	notifier *capturingNotifier
	branchID id.ID
	actor    Actor
}

func newFixture(t *testing.T, products ...*product.Product) *fixture {
	t.Helper()

	b := branch.New(id.New(), "Toko Pusat")
	repo := newFakeSessionRepo()
	prodRepo := newFakeProductRepo(products...)
	entries := &fakeLedgerRepo{}
	branchRepo := newFakeBranchRepo(b)
	notifier := &capturingNotifier{}

	svc := NewService(
		repo,
		prodRepo,
		branchRepo,
		ledger.NewService(entries, prodRepo),
		&fakeTxManager{},
		notifier,
		audit.Noop{},
	)

	return &fixture{
		svc:      svc,
		repo:     repo,
		products: prodRepo,
		entries:  entries,
		branches: branchRepo,
		notifier: notifier,
		branchID: b.ID,
		actor:    Actor{UserID: id.New(), UserName: "Budi"},
	}
}

func (fx *fixture) product(name, sku string, qty types.Quantity) *product.Product {
	p := product.New(fx.branchID, name, qty)
	if sku != "" {
		p.SKU = &sku
	}
	fx.products.products[p.ID] = p
	return p
}

func (fx *fixture) draftWithItem(t *testing.T, p *product.Product, counted types.Quantity) *Session {
	t.Helper()
	ctx := context.Background()

	sess, err := fx.svc.Create(ctx, fx.branchID, "", fx.actor)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := fx.svc.AddItem(ctx, sess.ID, p.ID, counted, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}
	return sess
}

// --- tests ---

func TestService_AddItem(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "KS-001", 10)
	ctx := context.Background()

	sess, err := fx.svc.Create(ctx, fx.branchID, "monthly count", fx.actor)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !strings.HasPrefix(sess.Code, "SO-") {
		t.Errorf("code = %q, want SO- prefix", sess.Code)
	}

	item, err := fx.svc.AddItem(ctx, sess.ID, p.ID, 7, "shelf 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.SystemQuantity != 10 || item.CountedQuantity != 7 || item.Difference != -3 {
		t.Errorf("item = sys %d counted %d diff %d, want 10/7/-3",
			item.SystemQuantity, item.CountedQuantity, item.Difference)
	}

	stored, err := fx.svc.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.TotalItems != 1 || stored.TotalNegativeAdjustment != 3 {
		t.Errorf("aggregates = items %d neg %d, want 1/3",
			stored.TotalItems, stored.TotalNegativeAdjustment)
	}
}

func TestService_AddItem_NegativeCount(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess, _ := fx.svc.Create(context.Background(), fx.branchID, "", fx.actor)

	_, err := fx.svc.AddItem(context.Background(), sess.ID, p.ID, -1, "")
	assertCode(t, err, apperror.CodeValidation)
}

func TestService_AddItem_BranchMismatch(t *testing.T) {
	fx := newFixture(t)
	other := product.New(id.New(), "Foreign", 5)
	fx.products.products[other.ID] = other
	sess, _ := fx.svc.Create(context.Background(), fx.branchID, "", fx.actor)

	_, err := fx.svc.AddItem(context.Background(), sess.ID, other.ID, 3, "")
	assertCode(t, err, apperror.CodeValidation)
}

func TestService_AddItem_AfterSubmit(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := fx.svc.AddItem(ctx, sess.ID, p.ID, 8, "")
	assertCode(t, err, apperror.CodeInvalidState)
}

func TestService_Approve(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)
	ctx := context.Background()
	admin := Actor{UserID: id.New(), UserName: "Siti"}

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}
	approved, err := fx.svc.Approve(ctx, sess.ID, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if approved.Status != StatusApproved {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}
	if got := fx.products.products[p.ID].Quantity; got != 7 {
		t.Errorf("product quantity = %d, want counted value 7", got)
	}

	if len(fx.entries.entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(fx.entries.entries))
	}
	e := fx.entries.entries[0]
	if e.Type != ledger.TypeStockOpname {
		t.Errorf("entry type = %s, want stock_opname", e.Type)
	}
	if e.QuantityChange != -3 || e.StockBefore != 10 || e.StockAfter != 7 {
		t.Errorf("entry = change %d before %d after %d, want -3/10/7",
			e.QuantityChange, e.StockBefore, e.StockAfter)
	}
	if ref := e.Reference(); ref.Kind != ledger.RefStockOpname || ref.ID != sess.ID {
		t.Errorf("entry reference = %+v, want stock_opname/%s", ref, sess.ID)
	}
	if e.UserID == nil || *e.UserID != admin.UserID {
		t.Errorf("entry actor = %v, want approving admin", e.UserID)
	}
}

func TestService_Approve_StockMovedSinceCount(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// A sale of 1 unit lands between submit and approval.
	fx.products.products[p.ID].Quantity = 9

	if _, err := fx.svc.Approve(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The delta is recomputed against the locked live read, so the product
	// still lands exactly on the counted value and the chain stays contiguous.
	if got := fx.products.products[p.ID].Quantity; got != 7 {
		t.Errorf("product quantity = %d, want 7", got)
	}
	e := fx.entries.entries[0]
	if e.QuantityChange != -2 || e.StockBefore != 9 || e.StockAfter != 7 {
		t.Errorf("entry = change %d before %d after %d, want -2/9/7",
			e.QuantityChange, e.StockBefore, e.StockAfter)
	}
}

func TestService_Approve_SkipsMatchingCounts(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 10)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fx.svc.Approve(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.entries.entries) != 0 {
		t.Errorf("ledger entries = %d, want none for a matching count", len(fx.entries.entries))
	}
	if got := fx.products.products[p.ID].Quantity; got != 10 {
		t.Errorf("product quantity = %d, want untouched 10", got)
	}
}

func TestService_Submit_Notifies(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)

	if _, err := fx.svc.Submit(context.Background(), sess.ID, fx.actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.notifier.events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(fx.notifier.events))
	}
	n := fx.notifier.events[0]
	if n.Event != notify.EventOpnameSubmitted {
		t.Errorf("event = %s, want opname_submitted", n.Event)
	}
	if n.SessionID != sess.ID || n.BranchID != fx.branchID {
		t.Errorf("notification routing = %+v", n)
	}
}

func TestService_Reject_CarriesReason(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rejected, err := fx.svc.Reject(ctx, sess.ID, "recount aisle 3", fx.actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.AdminNotes != "recount aisle 3" {
		t.Errorf("session = %s/%q, want REJECTED with reason", rejected.Status, rejected.AdminNotes)
	}
	if len(fx.entries.entries) != 0 {
		t.Errorf("reject must not touch inventory, got %d entries", len(fx.entries.entries))
	}

	last := fx.notifier.events[len(fx.notifier.events)-1]
	if last.Event != notify.EventOpnameRejected || last.Reason != "recount aisle 3" {
		t.Errorf("notification = %+v, want rejection with reason", last)
	}
}

func TestService_ImportBulk(t *testing.T) {
	fx := newFixture(t)
	fx.product("Kopi Susu", "KS-001", 10)
	fx.product("Teh Botol", "TB-002", 8)
	ctx := context.Background()

	sess, err := fx.svc.Create(ctx, fx.branchID, "", fx.actor)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	results, err := fx.svc.ImportBulk(ctx, sess.ID, []CountRow{
		{Line: 2, SKU: "KS-001", Counted: 7},
		{Line: 3, SKU: "GONE-99", Counted: 4},
		{Line: 4, Invalid: true, Reason: "missing sku"},
		{Line: 5, SKU: "TB-002", Counted: 8},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	want := []ImportResult{
		{Line: 2, SKU: "KS-001", Imported: true},
		{Line: 3, SKU: "GONE-99", Reason: "unknown sku"},
		{Line: 4, Reason: "missing sku"},
		{Line: 5, SKU: "TB-002", Imported: true},
	}
	for i, w := range want {
		if results[i] != w {
			t.Errorf("result[%d] = %+v, want %+v", i, results[i], w)
		}
	}

	// Only the two resolvable rows became items.
	stored, err := fx.svc.GetByID(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", stored.TotalItems)
	}
	if stored.TotalNegativeAdjustment != 3 {
		t.Errorf("TotalNegativeAdjustment = %d, want 3", stored.TotalNegativeAdjustment)
	}
}

func TestService_ImportBulk_DraftOnly(t *testing.T) {
	fx := newFixture(t)
	p := fx.product("Kopi Susu", "KS-001", 10)
	sess := fx.draftWithItem(t, p, 7)
	ctx := context.Background()

	if _, err := fx.svc.Submit(ctx, sess.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := fx.svc.ImportBulk(ctx, sess.ID, []CountRow{{Line: 2, SKU: "KS-001", Counted: 5}})
	assertCode(t, err, apperror.CodeInvalidState)
}

func TestService_AuditFailureDoesNotBlock(t *testing.T) {
	fx := newFixture(t)
	auditor := &failingAuditor{}
	fx.svc.auditor = auditor
	p := fx.product("Kopi Susu", "", 10)
	sess := fx.draftWithItem(t, p, 7)

	submitted, err := fx.svc.Submit(context.Background(), sess.ID, fx.actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if submitted.Status != StatusSubmit {
		t.Errorf("status = %s, want SUBMIT despite audit failure", submitted.Status)
	}
	if auditor.calls == 0 {
		t.Errorf("auditor was never invoked")
	}
}

func TestService_Create_UnknownBranch(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), id.New(), "", fx.actor)
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_List_Filters(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	other := branch.New(id.New(), "Toko Cabang")
	if err := fx.branches.Create(ctx, other); err != nil {
		t.Fatalf("create branch: %v", err)
	}
	p2 := product.New(other.ID, "Teh Botol", 5)
	fx.products.products[p2.ID] = p2

	s1, err := fx.svc.Create(ctx, fx.branchID, "", fx.actor)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	s2, err := fx.svc.Create(ctx, other.ID, "", fx.actor)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := fx.svc.AddItem(ctx, s2.ID, p2.ID, 5, ""); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := fx.svc.Submit(ctx, s2.ID, fx.actor); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Push the first session out of the recent window.
	fx.repo.sessions[s1.ID].CreatedAt = time.Now().Add(-48 * time.Hour)

	byBranch, err := fx.svc.List(ctx, ListFilter{BranchID: fx.branchID})
	if err != nil {
		t.Fatalf("list by branch: %v", err)
	}
	if len(byBranch) != 1 || byBranch[0].ID != s1.ID {
		t.Errorf("branch filter returned %d sessions, want only the first", len(byBranch))
	}

	byStatus, err := fx.svc.List(ctx, ListFilter{Status: StatusSubmit})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != s2.ID {
		t.Errorf("status filter returned %d sessions, want only the submitted one", len(byStatus))
	}

	from := time.Now().Add(-time.Hour)
	recent, err := fx.svc.List(ctx, ListFilter{DateFrom: &from})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != s2.ID {
		t.Errorf("date filter returned %d sessions, want only the recent one", len(recent))
	}

	all, err := fx.svc.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list returned %d sessions, want 2", len(all))
	}
}
