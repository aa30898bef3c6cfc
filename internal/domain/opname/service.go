package opname

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"tokopos/internal/core/apperror"
	"tokopos/internal/core/id"
	"tokopos/internal/core/tx"
	"tokopos/internal/core/types"
	"tokopos/internal/domain/audit"
	"tokopos/internal/domain/catalogs/branch"
	"tokopos/internal/domain/catalogs/product"
	"tokopos/internal/domain/ledger"
	"tokopos/internal/domain/notify"
	"tokopos/pkg/logger"
	"tokopos/pkg/opcode"
)

// Actor identifies the user performing an operation.
type Actor struct {
	UserID   id.ID
	UserName string
}

// Service provides business operations for stock opname sessions.
//
// Approval is the critical path: it reconciles counted quantities against live
// inventory inside one transaction, locking each product row before reading
// it, so concurrent mutators (POS sales, purchase receipts, adjustments,
// other sessions) can never interleave their before/after pairs.
type Service struct {
	repo     Repository
	products product.Repository
	branches branch.Repository
	ledger   *ledger.Service
	txm      tx.Manager
	notifier notify.Notifier
	auditor  audit.Recorder
	codes    *opcode.Generator
}

// NewService creates a new opname service.
func NewService(
	repo Repository,
	products product.Repository,
	branches branch.Repository,
	ledgerSvc *ledger.Service,
	txm tx.Manager,
	notifier notify.Notifier,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		products: products,
		branches: branches,
		ledger:   ledgerSvc,
		txm:      txm,
		notifier: notifier,
		auditor:  auditor,
		codes:    opcode.New(opcode.DefaultPrefix),
	}
}

// Create starts a new session in DRAFT for the given branch.
func (s *Service) Create(ctx context.Context, branchID id.ID, notes string, actor Actor) (*Session, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return nil, err
	}

	sess := NewSession(s.codes.Generate(time.Now().UTC()), branchID, actor.UserID, actor.UserName, notes)
	if err := sess.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, sess, "create", actor)
	logger.Info(ctx, "opname session created", "id", sess.ID, "code", sess.Code, "branch_id", branchID)
	return sess, nil
}

// GetByID retrieves a session with its items.
func (s *Service) GetByID(ctx context.Context, sessionID id.ID) (*Session, error) {
	sess, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sess.Items = items
	return sess, nil
}

// List retrieves sessions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Session, error) {
	return s.repo.List(ctx, filter)
}

// AddItem records a physical count for one product. The session must be in
// DRAFT. The product row is locked and its live quantity re-snapshotted as
// system_quantity on every (re)write, so the stored difference is always
// "counted vs. the authoritative quantity at count time".
func (s *Service) AddItem(ctx context.Context, sessionID, productID id.ID, counted types.Quantity, notes string) (*Item, error) {
	if counted < 0 {
		return nil, apperror.NewValidation("counted quantity must not be negative").
			WithDetail("field", "countedQuantity")
	}

	var item *Item
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureStatus("add item", StatusDraft); err != nil {
			return err
		}

		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p.BranchID != sess.BranchID {
			return apperror.NewValidation("product belongs to a different branch").
				WithDetail("product_id", productID).
				WithDetail("branch_id", sess.BranchID)
		}

		item = sess.UpsertItem(ProductSnapshot{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  p.Quantity,
		}, counted, notes)

		if err := s.repo.UpsertItem(ctx, item); err != nil {
			return fmt.Errorf("upsert item: %w", err)
		}
		return s.repo.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes an item from a DRAFT session.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureStatus("remove item", StatusDraft); err != nil {
			return err
		}

		if err := sess.RemoveItem(itemID); err != nil {
			return err
		}

		if err := s.repo.DeleteItem(ctx, sessionID, itemID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return s.repo.Update(ctx, sess)
	})
}

// Submit transitions a DRAFT session with at least one item to SUBMIT and
// fans out a best-effort notification to the tenant's admins.
func (s *Service) Submit(ctx context.Context, sessionID id.ID, actor Actor) (*Session, error) {
	var sess *Session
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.Submit(actor.UserID, actor.UserName); err != nil {
			return err
		}
		return s.repo.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyOpname(ctx, notify.OpnameNotification{
		Event:       notify.EventOpnameSubmitted,
		SessionID:   sess.ID,
		SessionCode: sess.Code,
		BranchID:    sess.BranchID,
		ActorID:     actor.UserID,
		ActorName:   actor.UserName,
	})
	s.recordAudit(ctx, sess, "submit", actor)

	logger.Info(ctx, "opname session submitted", "id", sess.ID, "code", sess.Code, "items", sess.TotalItems)
	return sess, nil
}

// Approve reconciles every counted item against live inventory and transitions
// the session to APPROVED. All reconciliations for the session execute inside
// a single transaction: either every product is updated and every ledger entry
// written, or none are.
//
// The delta applied per product is counted minus the quantity read under the
// row lock at approval time, not the stale item difference: the product
// always lands exactly on the counted value and the ledger chain stays
// contiguous even if stock moved between count and approval.
func (s *Service) Approve(ctx context.Context, sessionID id.ID, actor Actor) (*Session, error) {
	var sess *Session
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureStatus("approve", StatusSubmit); err != nil {
			return err
		}

		for i := range sess.Items {
			it := &sess.Items[i]
			if it.Difference == 0 {
				continue
			}

			p, err := s.products.GetForUpdate(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("lock product %s: %w", it.ProductID, err)
			}

			delta := it.CountedQuantity - p.Quantity
			if delta == 0 {
				// Live stock already matches the count; nothing to reconcile.
				continue
			}

			_, err = s.ledger.Append(ctx, ledger.AppendCommand{
				BranchID:    sess.BranchID,
				ProductID:   it.ProductID,
				Delta:       delta,
				Type:        ledger.TypeStockOpname,
				Description: fmt.Sprintf("Stock opname %s", sess.Code),
				Reference:   ledger.NewOpnameReference(sess.ID),
				Actor:       ledger.Actor{UserID: actor.UserID, UserName: actor.UserName},
			})
			if err != nil {
				return fmt.Errorf("reconcile product %s: %w", it.ProductID, err)
			}
		}

		if err := sess.Approve(actor.UserID, actor.UserName); err != nil {
			return err
		}
		return s.repo.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyOpname(ctx, notify.OpnameNotification{
		Event:       notify.EventOpnameApproved,
		SessionID:   sess.ID,
		SessionCode: sess.Code,
		BranchID:    sess.BranchID,
		ActorID:     actor.UserID,
		ActorName:   actor.UserName,
	})
	s.recordAudit(ctx, sess, "approve", actor)

	logger.Info(ctx, "opname session approved",
		"id", sess.ID,
		"code", sess.Code,
		"positive_adjustment", sess.TotalPositiveAdjustment,
		"negative_adjustment", sess.TotalNegativeAdjustment,
	)
	return sess, nil
}

// Reject transitions a SUBMIT session to REJECTED with a mandatory reason.
// No inventory side effects.
func (s *Service) Reject(ctx context.Context, sessionID id.ID, reason string, actor Actor) (*Session, error) {
	var sess *Session
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.Reject(actor.UserID, actor.UserName, reason); err != nil {
			return err
		}
		return s.repo.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyOpname(ctx, notify.OpnameNotification{
		Event:       notify.EventOpnameRejected,
		SessionID:   sess.ID,
		SessionCode: sess.Code,
		BranchID:    sess.BranchID,
		ActorID:     actor.UserID,
		ActorName:   actor.UserName,
		Reason:      reason,
	})
	s.recordAudit(ctx, sess, "reject", actor)

	logger.Info(ctx, "opname session rejected", "id", sess.ID, "code", sess.Code)
	return sess, nil
}

// ImportResult reports the outcome of one count sheet row.
type ImportResult struct {
	Line     int    `json:"line"`
	SKU      string `json:"sku"`
	Imported bool   `json:"imported"`
	Reason   string `json:"reason,omitempty"`
}

// ImportBulk upserts count rows into a DRAFT session. Rows with missing
// fields or unknown SKUs are skipped, never fatal, and every skip is reported
// back so the caller can decide display behavior. Aggregates are recomputed
// once after the full batch.
func (s *Service) ImportBulk(ctx context.Context, sessionID id.ID, rows []CountRow) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(rows))

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sess, err := s.loadLocked(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := sess.EnsureStatus("import", StatusDraft); err != nil {
			return err
		}

		for _, row := range rows {
			res := ImportResult{Line: row.Line, SKU: row.SKU}

			if row.Invalid {
				res.Reason = row.Reason
				results = append(results, res)
				continue
			}

			found, err := s.products.GetBySKU(ctx, sess.BranchID, row.SKU)
			if err != nil {
				if apperror.IsNotFound(err) {
					res.Reason = "unknown sku"
					results = append(results, res)
					continue
				}
				return err
			}

			p, err := s.products.GetForUpdate(ctx, found.ID)
			if err != nil {
				return err
			}

			item := sess.UpsertItem(ProductSnapshot{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  p.Quantity,
			}, row.Counted, row.Notes)
			if err := s.repo.UpsertItem(ctx, item); err != nil {
				return fmt.Errorf("upsert item for sku %s: %w", row.SKU, err)
			}

			res.Imported = true
			results = append(results, res)
		}

		return s.repo.Update(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// ImportCSV parses a count sheet and imports it via ImportBulk.
func (s *Service) ImportCSV(ctx context.Context, sessionID id.ID, r io.Reader) ([]ImportResult, error) {
	rows, err := ParseCountSheet(r)
	if err != nil {
		return nil, err
	}
	return s.ImportBulk(ctx, sessionID, rows)
}

// ExportCSV writes the session's items as a count sheet.
func (s *Service) ExportCSV(ctx context.Context, sessionID id.ID, w io.Writer) error {
	sess, err := s.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	return WriteCountSheet(w, sess.Items)
}

// loadLocked fetches the session header with a row lock plus its items.
func (s *Service) loadLocked(ctx context.Context, sessionID id.ID) (*Session, error) {
	sess, err := s.repo.GetForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sess.Items = items
	return sess, nil
}

// recordAudit persists a transition record, best-effort.
func (s *Service) recordAudit(ctx context.Context, sess *Session, action string, actor Actor) {
	payload, err := json.Marshal(map[string]any{
		"code":                sess.Code,
		"status":              sess.Status,
		"branch_id":           sess.BranchID,
		"total_items":         sess.TotalItems,
		"positive_adjustment": sess.TotalPositiveAdjustment,
		"negative_adjustment": sess.TotalNegativeAdjustment,
		"admin_notes":         sess.AdminNotes,
	})
	if err != nil {
		logger.Warn(ctx, "marshal audit payload failed", "error", err)
		return
	}

	err = s.auditor.Record(ctx, audit.Entry{
		ID:         id.New(),
		Entity:     "stock_opname_session",
		EntityID:   sess.ID,
		Action:     action,
		ActorID:    actor.UserID,
		ActorName:  actor.UserName,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		logger.Warn(ctx, "audit record failed", "session_id", sess.ID, "action", action, "error", err)
	}
}
