package opname

import (
	"errors"
	"testing"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

func newDraftSession(t *testing.T) *Session {
	t.Helper()
	return NewSession("SO-20250115-093000-A1B2", id.New(), id.New(), "Budi", "")
}

func snap(productID id.ID, name string, qty types.Quantity) ProductSnapshot {
	return ProductSnapshot{ProductID: productID, Name: name, Quantity: qty}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("error code = %s, want %s", appErr.Code, code)
	}
}

func TestUpsertItem_Aggregates(t *testing.T) {
	sess := newDraftSession(t)

	// One surplus of 5, one shortage of 2.
	sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 15, "")
	sess.UpsertItem(snap(id.New(), "Teh Botol", 8), 6, "")

	if sess.TotalItems != 2 {
		t.Errorf("TotalItems = %d, want 2", sess.TotalItems)
	}
	if sess.TotalPositiveAdjustment != 5 {
		t.Errorf("TotalPositiveAdjustment = %d, want 5", sess.TotalPositiveAdjustment)
	}
	if sess.TotalNegativeAdjustment != 2 {
		t.Errorf("TotalNegativeAdjustment = %d, want 2", sess.TotalNegativeAdjustment)
	}
}

func TestUpsertItem_RewriteResnapshots(t *testing.T) {
	sess := newDraftSession(t)
	productID := id.New()

	first := sess.UpsertItem(snap(productID, "Kopi Susu", 10), 7, "first count")
	if first.Difference != -3 {
		t.Fatalf("first difference = %d, want -3", first.Difference)
	}

	// A sale happened between counts; the re-add must capture the new live
	// quantity, not the original one.
	second := sess.UpsertItem(snap(productID, "Kopi Susu", 8), 9, "recount")

	if sess.TotalItems != 1 {
		t.Fatalf("TotalItems = %d, want 1 after rewrite", sess.TotalItems)
	}
	if second.ID != first.ID {
		t.Errorf("rewrite created a new item instead of overwriting")
	}
	if second.SystemQuantity != 8 {
		t.Errorf("SystemQuantity = %d, want re-snapshotted 8", second.SystemQuantity)
	}
	if second.CountedQuantity != 9 {
		t.Errorf("CountedQuantity = %d, want 9", second.CountedQuantity)
	}
	if second.Difference != 1 {
		t.Errorf("Difference = %d, want 1", second.Difference)
	}
	if second.Notes != "recount" {
		t.Errorf("Notes = %q, want %q", second.Notes, "recount")
	}
	if sess.TotalPositiveAdjustment != 1 || sess.TotalNegativeAdjustment != 0 {
		t.Errorf("aggregates = +%d/-%d, want +1/-0",
			sess.TotalPositiveAdjustment, sess.TotalNegativeAdjustment)
	}
}

func TestRemoveItem(t *testing.T) {
	sess := newDraftSession(t)
	item := sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 12, "")
	itemID := item.ID

	if err := sess.RemoveItem(itemID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.TotalItems != 0 || sess.TotalPositiveAdjustment != 0 {
		t.Errorf("aggregates not reset after removal: items=%d pos=%d",
			sess.TotalItems, sess.TotalPositiveAdjustment)
	}

	assertCode(t, sess.RemoveItem(id.New()), apperror.CodeMismatch)
}

func TestSubmit_EmptySession(t *testing.T) {
	sess := newDraftSession(t)

	err := sess.Submit(id.New(), "Budi")
	assertCode(t, err, apperror.CodeEmptySession)
	if sess.Status != StatusDraft {
		t.Errorf("status = %s, want DRAFT after failed submit", sess.Status)
	}
}

func TestSubmit(t *testing.T) {
	sess := newDraftSession(t)
	sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 7, "")
	actorID := id.New()
	versionBefore := sess.Version

	if err := sess.Submit(actorID, "Budi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != StatusSubmit {
		t.Errorf("status = %s, want SUBMIT", sess.Status)
	}
	if sess.SubmittedBy == nil || *sess.SubmittedBy != actorID {
		t.Errorf("SubmittedBy not recorded")
	}
	if sess.SubmittedAt == nil {
		t.Errorf("SubmittedAt not recorded")
	}
	if sess.Version != versionBefore+1 {
		t.Errorf("Version = %d, want %d", sess.Version, versionBefore+1)
	}
}

func TestApprove_RequiresSubmit(t *testing.T) {
	sess := newDraftSession(t)
	sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 7, "")

	assertCode(t, sess.Approve(id.New(), "Admin"), apperror.CodeInvalidState)

	if err := sess.Submit(id.New(), "Budi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sess.Approve(id.New(), "Admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != StatusApproved {
		t.Errorf("status = %s, want APPROVED", sess.Status)
	}
	if !sess.Status.IsTerminal() {
		t.Errorf("APPROVED must be terminal")
	}
}

func TestReject_RequiresReason(t *testing.T) {
	sess := newDraftSession(t)
	sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 7, "")
	if err := sess.Submit(id.New(), "Budi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := sess.Reject(id.New(), "Admin", "")
	assertCode(t, err, apperror.CodeValidation)
	if sess.Status != StatusSubmit {
		t.Errorf("status = %s, want SUBMIT after failed reject", sess.Status)
	}

	if err := sess.Reject(id.New(), "Admin", "counts look wrong, redo aisle 3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != StatusRejected {
		t.Errorf("status = %s, want REJECTED", sess.Status)
	}
	if sess.AdminNotes != "counts look wrong, redo aisle 3" {
		t.Errorf("AdminNotes = %q, reason not stored", sess.AdminNotes)
	}
	if sess.RejectedAt == nil {
		t.Errorf("RejectedAt not recorded")
	}
}

func TestTerminalStates_Immutable(t *testing.T) {
	for _, terminal := range []Status{StatusApproved, StatusRejected} {
		sess := newDraftSession(t)
		sess.UpsertItem(snap(id.New(), "Kopi Susu", 10), 7, "")
		sess.Status = terminal

		if err := sess.Submit(id.New(), "Budi"); err == nil {
			t.Errorf("%s: submit allowed", terminal)
		}
		if err := sess.Approve(id.New(), "Admin"); err == nil {
			t.Errorf("%s: approve allowed", terminal)
		}
		if err := sess.Reject(id.New(), "Admin", "reason"); err == nil {
			t.Errorf("%s: reject allowed", terminal)
		}
		if err := sess.EnsureStatus("add item", StatusDraft); err == nil {
			t.Errorf("%s: item edit allowed", terminal)
		}
	}
}

func TestEnsureStatus_ErrorDetails(t *testing.T) {
	sess := newDraftSession(t)
	sess.Status = StatusSubmit

	err := sess.EnsureStatus("add item", StatusDraft)
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Details["current"] != "SUBMIT" || appErr.Details["required"] != "DRAFT" {
		t.Errorf("details = %v, want current=SUBMIT required=DRAFT", appErr.Details)
	}
}
