// Package opname provides the stock opname session: a physical inventory
// count workflow scoped to one branch. A session collects counted-vs-system
// line items while in DRAFT, is handed over for review with SUBMIT, and on
// APPROVED becomes the sole producer of "stock_opname" ledger entries and the
// sole writer that sets product quantity to a counted value directly.
package opname

import (
	"context"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/types"
)

// Status represents the session lifecycle state.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSubmit   Status = "SUBMIT"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Session is one physical count event at one branch.
type Session struct {
	ID id.ID `db:"id" json:"id"`

	// Code is unique, generated as SO-YYYYMMDD-HHMMSS-XXXX.
	Code     string `db:"code" json:"code"`
	BranchID id.ID  `db:"branch_id" json:"branchId"`
	Status   Status `db:"status" json:"status"`

	CreatedBy     id.ID  `db:"created_by" json:"createdBy"`
	CreatedByName string `db:"created_by_name" json:"createdByName"`

	SubmittedBy     *id.ID `db:"submitted_by" json:"submittedBy,omitempty"`
	SubmittedByName string `db:"submitted_by_name" json:"submittedByName,omitempty"`
	ApprovedBy      *id.ID `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedByName  string `db:"approved_by_name" json:"approvedByName,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// AdminNotes holds the mandatory rejection reason.
	AdminNotes string `db:"admin_notes" json:"adminNotes,omitempty"`

	// Denormalized aggregates, recomputed on every item mutation.
	TotalItems              int            `db:"total_items" json:"totalItems"`
	TotalPositiveAdjustment types.Quantity `db:"total_positive_adjustment" json:"totalPositiveAdjustment"`
	TotalNegativeAdjustment types.Quantity `db:"total_negative_adjustment" json:"totalNegativeAdjustment"`

	SubmittedAt *time.Time `db:"submitted_at" json:"submittedAt,omitempty"`
	ApprovedAt  *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	RejectedAt  *time.Time `db:"rejected_at" json:"rejectedAt,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// Item is one counted product within a session, unique per (session, product).
type Item struct {
	ID        id.ID `db:"id" json:"id"`
	SessionID id.ID `db:"session_id" json:"sessionId"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// ProductName is a value copy taken at write time.
	ProductName string `db:"product_name" json:"productName"`

	// SystemQuantity is the live product quantity at the moment the item was
	// last (re)written, not at session creation. Re-adding a product
	// re-snapshots it.
	SystemQuantity  types.Quantity `db:"system_quantity" json:"systemQuantity"`
	CountedQuantity types.Quantity `db:"counted_quantity" json:"countedQuantity"`

	// Difference = counted - system, recomputed on every write.
	Difference types.Quantity `db:"difference" json:"difference"`

	Notes string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSession creates a session in DRAFT with zero items and aggregates.
func NewSession(code string, branchID, createdBy id.ID, createdByName, notes string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:            id.New(),
		Code:          code,
		BranchID:      branchID,
		Status:        StatusDraft,
		CreatedBy:     createdBy,
		CreatedByName: createdByName,
		Notes:         notes,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         make([]Item, 0),
	}
}

// Touch updates the timestamp and increments version.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
	s.Version++
}

// EnsureStatus returns a typed InvalidState error unless the session is in
// the required status.
func (s *Session) EnsureStatus(operation string, required Status) error {
	if s.Status != required {
		return apperror.NewInvalidState(operation, string(s.Status), string(required))
	}
	return nil
}

// ProductSnapshot is the locked product read captured at item write time.
type ProductSnapshot struct {
	ProductID id.ID
	Name      string
	Quantity  types.Quantity
}

// UpsertItem records a count for a product. Re-invoking for the same product
// overwrites the prior counted value and re-snapshots system_quantity from
// the supplied live read: last write wins, there is no recount history.
// Caller must hold the product row lock and guard DRAFT status.
func (s *Session) UpsertItem(snap ProductSnapshot, counted types.Quantity, notes string) *Item {
	now := time.Now().UTC()

	for i := range s.Items {
		if s.Items[i].ProductID == snap.ProductID {
			it := &s.Items[i]
			it.ProductName = snap.Name
			it.SystemQuantity = snap.Quantity
			it.CountedQuantity = counted
			it.Difference = counted - snap.Quantity
			it.Notes = notes
			it.UpdatedAt = now
			s.RecalcAggregates()
			return it
		}
	}

	item := Item{
		ID:              id.New(),
		SessionID:       s.ID,
		ProductID:       snap.ProductID,
		ProductName:     snap.Name,
		SystemQuantity:  snap.Quantity,
		CountedQuantity: counted,
		Difference:      counted - snap.Quantity,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Items = append(s.Items, item)
	s.RecalcAggregates()
	return &s.Items[len(s.Items)-1]
}

// RemoveItem deletes an item by id. Returns Mismatch if the item does not
// belong to this session.
func (s *Session) RemoveItem(itemID id.ID) error {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.RecalcAggregates()
			return nil
		}
	}
	return apperror.NewMismatch(s.ID, itemID)
}

// RecalcAggregates recomputes the denormalized totals from the items.
func (s *Session) RecalcAggregates() {
	s.TotalItems = len(s.Items)
	s.TotalPositiveAdjustment = 0
	s.TotalNegativeAdjustment = 0

	for i := range s.Items {
		d := s.Items[i].Difference
		if d > 0 {
			s.TotalPositiveAdjustment += d
		} else if d < 0 {
			s.TotalNegativeAdjustment += -d
		}
	}
}

// Submit transitions DRAFT -> SUBMIT. Requires at least one item.
func (s *Session) Submit(actorID id.ID, actorName string) error {
	if err := s.EnsureStatus("submit", StatusDraft); err != nil {
		return err
	}
	if s.TotalItems == 0 {
		return apperror.NewEmptySession(s.ID)
	}

	now := time.Now().UTC()
	s.Status = StatusSubmit
	uid := actorID
	s.SubmittedBy = &uid
	s.SubmittedByName = actorName
	s.SubmittedAt = &now
	s.Touch()
	return nil
}

// Approve transitions SUBMIT -> APPROVED (terminal). Inventory reconciliation
// happens in the service, inside the same transaction as this transition.
func (s *Session) Approve(actorID id.ID, actorName string) error {
	if err := s.EnsureStatus("approve", StatusSubmit); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Status = StatusApproved
	uid := actorID
	s.ApprovedBy = &uid
	s.ApprovedByName = actorName
	s.ApprovedAt = &now
	s.Touch()
	return nil
}

// Reject transitions SUBMIT -> REJECTED (terminal). Reason is mandatory and
// stored in AdminNotes. No inventory side effects.
func (s *Session) Reject(actorID id.ID, actorName, reason string) error {
	if reason == "" {
		return apperror.NewValidation("rejection reason is required").
			WithDetail("field", "reason")
	}
	if err := s.EnsureStatus("reject", StatusSubmit); err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Status = StatusRejected
	uid := actorID
	s.ApprovedBy = &uid
	s.ApprovedByName = actorName
	s.AdminNotes = reason
	s.RejectedAt = &now
	s.Touch()
	return nil
}

// Validate checks session invariants.
func (s *Session) Validate(ctx context.Context) error {
	if id.IsNil(s.BranchID) {
		return apperror.NewValidation("branch is required").WithDetail("field", "branchId")
	}
	if s.Code == "" {
		return apperror.NewValidation("code is required").WithDetail("field", "code")
	}
	switch s.Status {
	case StatusDraft, StatusSubmit, StatusApproved, StatusRejected:
	default:
		return apperror.NewValidation("unknown status").WithDetail("status", string(s.Status))
	}
	return nil
}
